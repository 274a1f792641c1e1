package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

type SessionEndpoints struct {
	store   *repository.Store
	tracker *SessionTracker
}

type StartSessionRequest struct {
	EmployeeID string `json:"employee_id"`
	ProductID  uint   `json:"product_id"`
}

type StopSessionRequest struct {
	EmployeeID string `json:"employee_id"`
}

func NewSessionEndpoints(store *repository.Store, tracker *SessionTracker) *SessionEndpoints {
	return &SessionEndpoints{
		store:   store,
		tracker: tracker,
	}
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", e.ListSessionsHandler)
		r.Get("/active", e.ActiveSessionsHandler)
		r.Post("/start", e.StartSessionHandler)
		r.Post("/stop", e.StopSessionHandler)
	})
}

func (e *SessionEndpoints) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	var sessions []models.WorkSession
	var err error

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		sessions, err = e.store.SessionsForEmployee(r.Context(), employeeID)
	} else {
		sessions, err = e.store.ListSessions(r.Context())
	}
	if err != nil {
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// ActiveSessionsHandler exposes the open-session pointers with their live
// elapsed time, for the stopwatch display.
func (e *SessionEndpoints) ActiveSessionsHandler(w http.ResponseWriter, r *http.Request) {
	active := e.tracker.ActiveSessions()

	type activeView struct {
		ActiveSession
		ElapsedSeconds int `json:"elapsed_seconds"`
		Efficiency     int `json:"efficiency"`
	}
	views := make([]activeView, 0, len(active))
	for _, a := range active {
		elapsed, _ := e.tracker.Elapsed(a.EmployeeID)
		efficiency, _ := e.tracker.EfficiencyPreview(a.EmployeeID)
		views = append(views, activeView{ActiveSession: a, ElapsedSeconds: elapsed, Efficiency: efficiency})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"active": views,
		"count":  len(views),
	})
}

func (e *SessionEndpoints) StartSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" || req.ProductID == 0 {
		http.Error(w, "employee_id and product_id are required", http.StatusBadRequest)
		return
	}

	session, err := e.tracker.Start(r.Context(), req.EmployeeID, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownEmployee), errors.Is(err, ErrUnknownProduct):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrSessionAlreadyOpen), errors.Is(err, ErrInactiveProduct):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			slog.Error("Failed to start session", "error", err, "employee_id", req.EmployeeID)
			http.Error(w, "Failed to start session", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func (e *SessionEndpoints) StopSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req StopSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "employee_id is required", http.StatusBadRequest)
		return
	}

	session, err := e.tracker.Stop(r.Context(), req.EmployeeID)
	if err != nil {
		slog.Error("Failed to stop session", "error", err, "employee_id", req.EmployeeID)
		http.Error(w, "Failed to stop session", http.StatusInternalServerError)
		return
	}
	if session == nil {
		// Stop while idle is a no-op, not an error.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"No open session"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(session)
}
