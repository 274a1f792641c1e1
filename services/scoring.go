package services

import (
	"context"
	"math"
	"sort"

	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

const (
	// Neutral defaults for employees with no history. A new employee starts at
	// the midpoint rather than zero so the ranking does not bury them.
	defaultVelocity   = 50
	defaultEvaluation = 60
)

// ComputeStats derives the full scorecard for one employee from the raw
// collections. It is a pure function: no store access, no caching, the same
// inputs always produce the same PlayerStats. Rounding is math.Round (half
// away from zero) throughout.
func ComputeStats(
	employeeID string,
	sessions []models.WorkSession,
	evaluations []models.Evaluation,
	products []models.Product,
	config models.SystemConfig,
	populationIDs []string,
) models.PlayerStats {
	productByID := make(map[uint]*models.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	finished := finishedSessions(sessions, employeeID)
	eval := latestEvaluation(evaluations, employeeID)

	// Velocity: mean of per-session standard/actual ratios, each capped at 100.
	// A session faster than standard earns full credit, never more.
	var ratioSum float64
	ratioCount := 0
	for _, s := range finished {
		prod := productByID[s.ProductID]
		if prod != nil && s.TotalSeconds > 0 {
			ratio := float64(prod.StandardSeconds) / float64(s.TotalSeconds) * 100
			ratioSum += math.Min(ratio, 100)
			ratioCount++
		}
	}
	velocity := defaultVelocity
	if ratioCount > 0 {
		velocity = int(math.Round(ratioSum / float64(ratioCount)))
	}

	// Productivity: the employee's summed product value-weight, normalized by
	// the highest sum across the population. The floor of 1 guards the division
	// when nobody has finished anything.
	weightSum := sessionWeightSum(finished, productByID)
	maxSum := 1.0
	for _, id := range populationIDs {
		sum := sessionWeightSum(finishedSessions(sessions, id), productByID)
		if sum > maxSum {
			maxSum = sum
		}
	}
	productivity := int(math.Round(weightSum / maxSum * 100))

	// Resolution and compliance come straight from the evaluation record.
	resolution := defaultEvaluation
	compliance := defaultEvaluation
	idleSeconds := 0
	if eval != nil {
		resolution = eval.ResolutionScore
		compliance = eval.ComplianceScore
		idleSeconds = eval.IdleSeconds
	}

	// Global score: weighted sum under the current config. Weights are taken
	// as-is; if they do not sum to 1 the result simply leaves the nominal
	// 0-100 range.
	globalScore := int(math.Round(
		float64(velocity)*config.VelocityWeight +
			float64(productivity)*config.ProductivityWeight +
			float64(resolution)*config.ResolutionWeight +
			float64(compliance)*config.ComplianceWeight))

	// Performance: product value throughput per effective hour worked, with
	// recorded idle time excluded. Floor of 1 second guards the division.
	totalSeconds := 0
	for _, s := range finished {
		totalSeconds += s.TotalSeconds
	}
	effectiveSeconds := math.Max(float64(totalSeconds-idleSeconds), 1)
	performance := int(math.Min(math.Round(weightSum/(effectiveSeconds/3600)*10), 100))

	return models.PlayerStats{
		EmployeeID:   employeeID,
		Velocity:     velocity,
		Productivity: productivity,
		Resolution:   resolution,
		Compliance:   compliance,
		Performance:  performance,
		GlobalScore:  globalScore,
	}
}

func finishedSessions(sessions []models.WorkSession, employeeID string) []models.WorkSession {
	var out []models.WorkSession
	for _, s := range sessions {
		if s.EmployeeID == employeeID && s.Finished() {
			out = append(out, s)
		}
	}
	return out
}

func sessionWeightSum(sessions []models.WorkSession, productByID map[uint]*models.Product) float64 {
	var sum float64
	for _, s := range sessions {
		// Deleted products contribute nothing; the orphaned reference is
		// tolerated rather than rejected.
		if prod := productByID[s.ProductID]; prod != nil {
			sum += prod.ValueWeight
		}
	}
	return sum
}

// latestEvaluation picks the employee's evaluation with the most recent period
// end when several exist.
func latestEvaluation(evaluations []models.Evaluation, employeeID string) *models.Evaluation {
	var latest *models.Evaluation
	for i := range evaluations {
		e := &evaluations[i]
		if e.EmployeeID != employeeID {
			continue
		}
		if latest == nil || e.PeriodEnd.After(latest.PeriodEnd) {
			latest = e
		}
	}
	return latest
}

// StatsService reads the raw collections from the store and feeds them to the
// pure scoring function. Results are recomputed on every call and never
// persisted.
type StatsService struct {
	store *repository.Store
}

func NewStatsService(store *repository.Store) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) StatsFor(ctx context.Context, employeeID string) (*models.PlayerStats, error) {
	sessions, evaluations, products, config, populationIDs, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(employeeID, sessions, evaluations, products, *config, populationIDs)
	return &stats, nil
}

// Leaderboard computes stats for every employee-role profile, sorted by global
// score descending.
func (s *StatsService) Leaderboard(ctx context.Context) ([]models.PlayerStats, error) {
	sessions, evaluations, products, config, populationIDs, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}

	board := make([]models.PlayerStats, 0, len(populationIDs))
	for _, id := range populationIDs {
		board = append(board, ComputeStats(id, sessions, evaluations, products, *config, populationIDs))
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].GlobalScore > board[j].GlobalScore
	})
	return board, nil
}

func (s *StatsService) collections(ctx context.Context) ([]models.WorkSession, []models.Evaluation, []models.Product, *models.SystemConfig, []string, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	evaluations, err := s.store.ListEvaluations(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	products, err := s.store.ListProducts(ctx, false)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	config, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	if config == nil {
		config = &models.SystemConfig{}
	}
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	populationIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.Role == models.RoleEmployee {
			populationIDs = append(populationIDs, p.ID)
		}
	}
	return sessions, evaluations, products, config, populationIDs, nil
}
