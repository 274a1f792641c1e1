package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newEvaluationRouter(t *testing.T) *chi.Mux {
	t.Helper()

	store := newTestStore(t)
	seedTrackerFixtures(t, store)

	r := chi.NewRouter()
	NewEvaluationEndpoints(store).RegisterRoutes(r)
	return r
}

func TestCreateAndListEvaluations(t *testing.T) {
	router := newEvaluationRouter(t)

	body := `{"employee_id":"e1","resolution_score":88,"compliance_score":92,"idle_seconds":1200,"period_start":"2025-02-01","period_end":"2025-02-28"}`
	req := httptest.NewRequest("POST", "/evaluations/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, expected 201; body: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest("GET", "/evaluations/?employee_id=e1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("count = %d, expected 1", result.Count)
	}

	// The filter must exclude other employees.
	req = httptest.NewRequest("GET", "/evaluations/?employee_id=e2", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if result.Count != 0 {
		t.Errorf("count = %d for e2, expected 0", result.Count)
	}
}

func TestCreateEvaluationRejectsBadInput(t *testing.T) {
	router := newEvaluationRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"Missing employee id", `{"resolution_score":80,"compliance_score":80,"period_start":"2025-02-01","period_end":"2025-02-28"}`},
		{"Score out of range", `{"employee_id":"e1","resolution_score":150,"compliance_score":80,"period_start":"2025-02-01","period_end":"2025-02-28"}`},
		{"Negative idle seconds", `{"employee_id":"e1","resolution_score":80,"compliance_score":80,"idle_seconds":-1,"period_start":"2025-02-01","period_end":"2025-02-28"}`},
		{"Inverted period", `{"employee_id":"e1","resolution_score":80,"compliance_score":80,"period_start":"2025-02-28","period_end":"2025-02-01"}`},
		{"Unparseable period", `{"employee_id":"e1","resolution_score":80,"compliance_score":80,"period_start":"soon","period_end":"later"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/evaluations/", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, expected 400; body: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
