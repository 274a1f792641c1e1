package services

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

type EvaluationEndpoints struct {
	store *repository.Store
}

type CreateEvaluationRequest struct {
	EmployeeID      string `json:"employee_id"`
	ResolutionScore int    `json:"resolution_score"`
	ComplianceScore int    `json:"compliance_score"`
	IdleSeconds     int    `json:"idle_seconds"`
	PeriodStart     string `json:"period_start"`
	PeriodEnd       string `json:"period_end"`
}

func NewEvaluationEndpoints(store *repository.Store) *EvaluationEndpoints {
	return &EvaluationEndpoints{store: store}
}

func (e *EvaluationEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.Get("/", e.ListEvaluationsHandler)
		r.Post("/", e.CreateEvaluationHandler)
	})
}

func (e *EvaluationEndpoints) ListEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	evaluations, err := e.store.ListEvaluations(r.Context())
	if err != nil {
		http.Error(w, "Failed to list evaluations", http.StatusInternalServerError)
		return
	}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		filtered := make([]models.Evaluation, 0, len(evaluations))
		for _, eval := range evaluations {
			if eval.EmployeeID == employeeID {
				filtered = append(filtered, eval)
			}
		}
		evaluations = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"evaluations": evaluations,
		"count":       len(evaluations),
	})
}

func (e *EvaluationEndpoints) CreateEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.EmployeeID == "" {
		http.Error(w, "employee_id is required", http.StatusBadRequest)
		return
	}
	if req.ResolutionScore < 0 || req.ResolutionScore > 100 ||
		req.ComplianceScore < 0 || req.ComplianceScore > 100 {
		http.Error(w, "scores must be between 0 and 100", http.StatusBadRequest)
		return
	}
	if req.IdleSeconds < 0 {
		http.Error(w, "idle_seconds must not be negative", http.StatusBadRequest)
		return
	}

	periodStart := day(req.PeriodStart)
	periodEnd := day(req.PeriodEnd)
	if periodStart.IsZero() || periodEnd.IsZero() || periodEnd.Before(periodStart) {
		http.Error(w, "period_start and period_end must form a valid YYYY-MM-DD range", http.StatusBadRequest)
		return
	}

	eval := models.Evaluation{
		EmployeeID:      req.EmployeeID,
		ResolutionScore: req.ResolutionScore,
		ComplianceScore: req.ComplianceScore,
		IdleSeconds:     req.IdleSeconds,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
	}
	if err := e.store.CreateEvaluation(r.Context(), &eval); err != nil {
		http.Error(w, "Failed to create evaluation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(eval)
}
