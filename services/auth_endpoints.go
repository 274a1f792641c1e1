package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AuthEndpoints struct {
	authService *AuthService
}

type LoginRequest struct {
	ProfileID string `json:"profile_id"`
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", e.LoginHandler)
		r.Post("/logout", e.LogoutHandler)
		r.Get("/me", e.MeHandler)
	})
}

func (e *AuthEndpoints) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	profile, err := e.authService.Login(r.Context(), req.ProfileID)
	if err != nil {
		slog.Error("Login failed", "error", err, "profile_id", req.ProfileID)
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}
	if profile == nil {
		// The prior active profile, if any, stays in place.
		http.Error(w, "Profile not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"profile": profile,
		"message": "Login successful",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *AuthEndpoints) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	e.authService.Logout(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"Logout successful"}`))
}

func (e *AuthEndpoints) MeHandler(w http.ResponseWriter, r *http.Request) {
	profile := e.authService.ActiveProfile()
	if profile == nil {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}
