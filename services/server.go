package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/jalvarez/statline/backend/repository"
	ws "github.com/jalvarez/statline/backend/websocket"
	"gorm.io/gorm"
)

// Server holds all server dependencies
type Server struct {
	config           *Config
	store            *repository.Store
	rawDB            *gorm.DB
	tracker          *SessionTracker
	statsService     *StatsService
	authService      *AuthService
	authEndpoints    *AuthEndpoints
	profileEndpoints *ProfileEndpoints
	productEndpoints *ProductEndpoints
	sessionEndpoints *SessionEndpoints
	evalEndpoints    *EvaluationEndpoints
	statsEndpoints   *StatsEndpoints
	configEndpoints  *ConfigEndpoints
	wsHub            *ws.Hub
	upgrader         websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the database connection
func (s *Server) SetDatabase(store *repository.Store, rawDB *gorm.DB) {
	s.store = store
	s.rawDB = rawDB
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	s.tracker = NewSessionTracker(s.store)
	s.statsService = NewStatsService(s.store)
	s.authService = NewAuthService(s.store, s.tracker, s.config.JWT.Secret, s.config.State.SlotPath)

	s.authEndpoints = NewAuthEndpoints(s.authService)
	s.profileEndpoints = NewProfileEndpoints(s.store, s.authService)
	s.productEndpoints = NewProductEndpoints(s.store)
	s.sessionEndpoints = NewSessionEndpoints(s.store, s.tracker)
	s.evalEndpoints = NewEvaluationEndpoints(s.store)
	s.statsEndpoints = NewStatsEndpoints(s.statsService)
	s.configEndpoints = NewConfigEndpoints(s.store)
	slog.Info("Services initialized")

	// Restore the active profile persisted by a previous run, if it still
	// resolves against the freshly seeded profiles.
	s.authService.RestoreSlot(context.Background())

	// Live stopwatch feed: hub plus the tracker's 1 Hz broadcaster.
	s.wsHub = ws.NewHub()
	s.tracker.SetPublisher(s.wsHub)
	go s.wsHub.Run()
	go s.tracker.Run()

	return nil
}

// Tracker exposes the session tracker (used by tests and main).
func (s *Server) Tracker() *SessionTracker {
	return s.tracker
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.apiV1Handler)
		r.Get("/ws", s.websocketHandlerFunc)

		s.authEndpoints.RegisterRoutes(r)
		s.profileEndpoints.RegisterRoutes(r)
		s.productEndpoints.RegisterRoutes(r)
		s.sessionEndpoints.RegisterRoutes(r)
		s.evalEndpoints.RegisterRoutes(r)
		s.statsEndpoints.RegisterRoutes(r)
		s.configEndpoints.RegisterRoutes(r)
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	s.tracker.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")

	// Trim whitespace from origins
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	// Check if origin is in allowed list
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			slog.Info("WebSocket connection accepted", "origin", origin)
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.rawDB != nil {
		if sqlDB, err := s.rawDB.DB(); err == nil {
			if err := sqlDB.Ping(); err != nil {
				dbStatus = "down"
				status = "degraded"
			} else {
				dbStatus = "up"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))
}

func (s *Server) apiV1Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"API v1","version":"1.0.0"}`))
}

// websocketHandlerFunc upgrades the connection and attaches it to the live
// stopwatch feed. The employee_id query parameter selects whose stopwatch to
// follow; empty means all of them.
func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "employee_id", employeeID)

	client := s.wsHub.RegisterClient(conn, employeeID)
	go client.ReadPump()
	go client.WritePump()
}
