package services

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jalvarez/statline/backend/repository"
)

const weightSumTolerance = 1e-9

type ConfigEndpoints struct {
	store *repository.Store
}

// WeightValidation is the explicit result returned when a config update is
// rejected. The scoring engine itself accepts any weights; this guard lives
// only here, at the editing boundary.
type WeightValidation struct {
	Valid     bool    `json:"valid"`
	WeightSum float64 `json:"weight_sum"`
	Message   string  `json:"message,omitempty"`
}

func NewConfigEndpoints(store *repository.Store) *ConfigEndpoints {
	return &ConfigEndpoints{store: store}
}

func (e *ConfigEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/config", func(r chi.Router) {
		r.Get("/", e.GetConfigHandler)
		r.Put("/", e.UpdateConfigHandler)
	})
}

func (e *ConfigEndpoints) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	config, err := e.store.GetConfig(r.Context())
	if err != nil {
		http.Error(w, "Failed to get config", http.StatusInternalServerError)
		return
	}
	if config == nil {
		http.Error(w, "Config not seeded", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(config)
}

func (e *ConfigEndpoints) UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var patch repository.ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	current, err := e.store.GetConfig(r.Context())
	if err != nil {
		http.Error(w, "Failed to get config", http.StatusInternalServerError)
		return
	}
	if current == nil {
		http.Error(w, "Config not seeded", http.StatusNotFound)
		return
	}

	// Validate the weights as they would be after the merge.
	merged := *current
	if patch.VelocityWeight != nil {
		merged.VelocityWeight = *patch.VelocityWeight
	}
	if patch.ProductivityWeight != nil {
		merged.ProductivityWeight = *patch.ProductivityWeight
	}
	if patch.ResolutionWeight != nil {
		merged.ResolutionWeight = *patch.ResolutionWeight
	}
	if patch.ComplianceWeight != nil {
		merged.ComplianceWeight = *patch.ComplianceWeight
	}

	if sum := merged.WeightSum(); math.Abs(sum-1.0) > weightSumTolerance {
		slog.Warn("Rejecting config update, weights do not sum to 1", "weight_sum", sum)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(WeightValidation{
			Valid:     false,
			WeightSum: sum,
			Message:   "weights must sum to 1.0",
		})
		return
	}

	if err := e.store.UpdateConfig(r.Context(), patch); err != nil {
		http.Error(w, "Failed to update config", http.StatusInternalServerError)
		return
	}

	updated, err := e.store.GetConfig(r.Context())
	if err != nil {
		http.Error(w, "Failed to get config", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
