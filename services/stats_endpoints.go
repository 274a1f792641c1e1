package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type StatsEndpoints struct {
	statsService *StatsService
}

func NewStatsEndpoints(statsService *StatsService) *StatsEndpoints {
	return &StatsEndpoints{statsService: statsService}
}

func (e *StatsEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/stats", func(r chi.Router) {
		r.Get("/", e.LeaderboardHandler)
		r.Get("/{employeeId}", e.EmployeeStatsHandler)
	})
}

// EmployeeStatsHandler recomputes the scorecard from scratch on every call;
// nothing is cached or stored.
func (e *StatsEndpoints) EmployeeStatsHandler(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")

	stats, err := e.statsService.StatsFor(r.Context(), employeeID)
	if err != nil {
		slog.Error("Failed to compute stats", "error", err, "employee_id", employeeID)
		http.Error(w, "Failed to compute stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (e *StatsEndpoints) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	board, err := e.statsService.Leaderboard(r.Context())
	if err != nil {
		slog.Error("Failed to compute leaderboard", "error", err)
		http.Error(w, "Failed to compute leaderboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"leaderboard": board,
		"count":       len(board),
	})
}
