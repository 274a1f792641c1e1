package services

import (
	"testing"
	"time"

	"github.com/jalvarez/statline/backend/models"
)

func finishedAt(value string) *time.Time {
	t, _ := time.Parse("2006-01-02T15:04:05", value)
	return &t
}

func defaultWeights() models.SystemConfig {
	return models.SystemConfig{
		VelocityWeight:     0.30,
		ProductivityWeight: 0.30,
		ResolutionWeight:   0.20,
		ComplianceWeight:   0.20,
	}
}

func TestComputeStatsDefaults(t *testing.T) {
	// An employee with no history gets the neutral midpoints, not zeros.
	stats := ComputeStats("e1", nil, nil, nil, defaultWeights(), []string{"e1"})

	if stats.Velocity != 50 {
		t.Errorf("velocity = %d, expected 50 for an employee with no finished sessions", stats.Velocity)
	}
	if stats.Resolution != 60 || stats.Compliance != 60 {
		t.Errorf("resolution/compliance = %d/%d, expected 60/60 with no evaluation", stats.Resolution, stats.Compliance)
	}
	if stats.Productivity != 0 {
		t.Errorf("productivity = %d, expected 0 with no finished sessions", stats.Productivity)
	}
}

func TestVelocityCappedAt100(t *testing.T) {
	// Standard 600s finished in 540s: min(600/540*100, 100) = 100.
	products := []models.Product{
		{ID: 1, Name: "Standard Review B", ValueWeight: 1.5, StandardSeconds: 600, DifficultyLevel: 2, Active: true},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:09:00"), TotalSeconds: 540},
	}

	stats := ComputeStats("e1", sessions, nil, products, defaultWeights(), []string{"e1"})
	if stats.Velocity != 100 {
		t.Errorf("velocity = %d, expected 100 (faster than standard never exceeds full credit)", stats.Velocity)
	}
}

func TestVelocitySlowerThanStandard(t *testing.T) {
	// Standard 600s finished in 800s: round(600/800*100) = 75.
	products := []models.Product{
		{ID: 1, ValueWeight: 1.5, StandardSeconds: 600, Active: true},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:13:20"), TotalSeconds: 800},
	}

	stats := ComputeStats("e1", sessions, nil, products, defaultWeights(), []string{"e1"})
	if stats.Velocity != 75 {
		t.Errorf("velocity = %d, expected 75", stats.Velocity)
	}
}

func TestVelocityIgnoresOpenAndOrphanedSessions(t *testing.T) {
	products := []models.Product{
		{ID: 1, StandardSeconds: 600, ValueWeight: 1},
	}
	sessions := []models.WorkSession{
		// Open session: no end timestamp, excluded entirely.
		{ID: 1, EmployeeID: "e1", ProductID: 1, TotalSeconds: 0},
		// Finished but the product is gone: no velocity sample.
		{ID: 2, EmployeeID: "e1", ProductID: 99, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 300},
	}

	stats := ComputeStats("e1", sessions, nil, products, defaultWeights(), []string{"e1"})
	if stats.Velocity != 50 {
		t.Errorf("velocity = %d, expected the default 50 when no session is eligible", stats.Velocity)
	}
}

func TestProductivityNormalization(t *testing.T) {
	// Employee weight 3.5 against a population max of 5.0: round(3.5/5*100) = 70.
	products := []models.Product{
		{ID: 1, ValueWeight: 3.5, StandardSeconds: 1800},
		{ID: 2, ValueWeight: 5.0, StandardSeconds: 3600},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 1700},
		{ID: 2, EmployeeID: "e2", ProductID: 2, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 3500},
	}

	stats := ComputeStats("e1", sessions, nil, products, defaultWeights(), []string{"e1", "e2"})
	if stats.Productivity != 70 {
		t.Errorf("productivity = %d, expected 70", stats.Productivity)
	}
}

func TestProductivityMonotonicInOwnWeight(t *testing.T) {
	products := []models.Product{
		{ID: 1, ValueWeight: 2.0, StandardSeconds: 600},
		{ID: 2, ValueWeight: 5.0, StandardSeconds: 3600},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 700},
		{ID: 2, EmployeeID: "e2", ProductID: 2, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 3500},
	}
	population := []string{"e1", "e2"}

	before := ComputeStats("e1", sessions, nil, products, defaultWeights(), population)

	// One more finished high-weight session for e1, population unchanged.
	more := append(sessions, models.WorkSession{
		ID: 3, EmployeeID: "e1", ProductID: 2, EndedAt: finishedAt("2025-02-02T09:00:00"), TotalSeconds: 3600,
	})
	after := ComputeStats("e1", more, nil, products, defaultWeights(), population)

	if after.Productivity < before.Productivity {
		t.Errorf("productivity dropped from %d to %d after adding a finished session", before.Productivity, after.Productivity)
	}
}

func TestGlobalScoreWeightedSum(t *testing.T) {
	// Inputs engineered to yield velocity 85, productivity 78, resolution 90,
	// compliance 88. With weights {0.30, 0.30, 0.20, 0.20} the weighted sum is
	// 84.5, which rounds half away from zero to 85.
	products := []models.Product{
		{ID: 1, ValueWeight: 3.9, StandardSeconds: 850},
		{ID: 2, ValueWeight: 5.0, StandardSeconds: 3600},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 1000},
		{ID: 2, EmployeeID: "e2", ProductID: 2, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 3600},
	}
	evaluations := []models.Evaluation{
		{ID: 1, EmployeeID: "e1", ResolutionScore: 90, ComplianceScore: 88, IdleSeconds: 0,
			PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
	}

	stats := ComputeStats("e1", sessions, evaluations, products, defaultWeights(), []string{"e1", "e2"})

	if stats.Velocity != 85 {
		t.Fatalf("velocity = %d, expected 85", stats.Velocity)
	}
	if stats.Productivity != 78 {
		t.Fatalf("productivity = %d, expected 78", stats.Productivity)
	}
	if stats.GlobalScore != 85 {
		t.Errorf("global score = %d, expected 85", stats.GlobalScore)
	}
}

func TestGlobalScoreUnvalidatedWeights(t *testing.T) {
	// The engine takes the weights as-is; a sum above 1 just pushes the score
	// past the nominal range.
	config := models.SystemConfig{VelocityWeight: 1, ProductivityWeight: 1, ResolutionWeight: 1, ComplianceWeight: 1}
	stats := ComputeStats("e1", nil, nil, nil, config, []string{"e1"})

	want := 50 + 0 + 60 + 60
	if stats.GlobalScore != want {
		t.Errorf("global score = %d, expected %d with unnormalized weights", stats.GlobalScore, want)
	}
}

func TestPerformanceExcludesIdleTime(t *testing.T) {
	// 3600s worked, 1800s idle: effective 0.5h. Weight 2.0 gives
	// round(2.0/0.5*10) = 40.
	products := []models.Product{
		{ID: 1, ValueWeight: 2.0, StandardSeconds: 3600},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 3600},
	}
	evaluations := []models.Evaluation{
		{ID: 1, EmployeeID: "e1", ResolutionScore: 70, ComplianceScore: 70, IdleSeconds: 1800,
			PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
	}

	stats := ComputeStats("e1", sessions, evaluations, products, defaultWeights(), []string{"e1"})
	if stats.Performance != 40 {
		t.Errorf("performance = %d, expected 40", stats.Performance)
	}
}

func TestPerformanceCappedAt100(t *testing.T) {
	// A tiny effective time would blow performance up; the cap holds it at 100.
	products := []models.Product{
		{ID: 1, ValueWeight: 5.0, StandardSeconds: 600},
	}
	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "e1", ProductID: 1, EndedAt: finishedAt("2025-02-01T09:00:00"), TotalSeconds: 60},
	}

	stats := ComputeStats("e1", sessions, nil, products, defaultWeights(), []string{"e1"})
	if stats.Performance != 100 {
		t.Errorf("performance = %d, expected the cap of 100", stats.Performance)
	}
}

func TestEvaluationMostRecentPeriodWins(t *testing.T) {
	evaluations := []models.Evaluation{
		{ID: 1, EmployeeID: "e1", ResolutionScore: 50, ComplianceScore: 51,
			PeriodStart: day("2025-01-01"), PeriodEnd: day("2025-01-31")},
		{ID: 2, EmployeeID: "e1", ResolutionScore: 90, ComplianceScore: 91,
			PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
	}

	stats := ComputeStats("e1", nil, evaluations, nil, defaultWeights(), []string{"e1"})
	if stats.Resolution != 90 || stats.Compliance != 91 {
		t.Errorf("resolution/compliance = %d/%d, expected the February evaluation (90/91)", stats.Resolution, stats.Compliance)
	}
}
