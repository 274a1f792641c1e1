package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

// DatabaseSeeder loads the demo fixture set. The store is in-memory by
// default, so this runs on every start; all checks below keep it idempotent
// for the Postgres case where data actually sticks around.
type DatabaseSeeder struct {
	store   *repository.Store
	weights WeightsConfig
}

func NewDatabaseSeeder(store *repository.Store, weights WeightsConfig) *DatabaseSeeder {
	return &DatabaseSeeder{store: store, weights: weights}
}

func day(value string) time.Time {
	t, _ := time.Parse("2006-01-02", value)
	return t
}

func stamp(value string) time.Time {
	t, _ := time.Parse("2006-01-02T15:04:05", value)
	return t
}

func stampPtr(value string) *time.Time {
	t := stamp(value)
	return &t
}

// SeedDatabase seeds the store with the demo fixture set (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	if s.isSeedingComplete(ctx) {
		slog.Info("Database seeding already completed, skipping")
		return nil
	}

	profiles := []models.Profile{
		{ID: "u1", FullName: "ChangoNocturno", Role: models.RoleAdmin, Title: "Technical Director", CreatedAt: day("2024-01-15")},
		{ID: "u2", FullName: "Castolo", Role: models.RoleManager, Title: "Field Captain", CreatedAt: day("2024-02-01")},
		{ID: "u3", FullName: "Niellendner", Role: models.RoleEmployee, Title: "Senior Operator", CreatedAt: day("2024-03-10")},
		{ID: "u4", FullName: "Diego Forlán", Role: models.RoleEmployee, Title: "Elegant Finisher", CreatedAt: day("2024-03-15")},
		{ID: "u5", FullName: "Pupi Zanetti", Role: models.RoleEmployee, Title: "Tireless Wingback", CreatedAt: day("2024-04-01")},
		{ID: "u6", FullName: "Marcelo", Role: models.RoleEmployee, Title: "Magic Fullback", CreatedAt: day("2024-04-10")},
		{ID: "u7", FullName: "Van Basten", Role: models.RoleEmployee, Title: "Elegant Finisher", CreatedAt: day("2024-04-15")},
		{ID: "u8", FullName: "Wayne Rooney", Role: models.RoleEmployee, Title: "Bulls Terrier", CreatedAt: day("2024-04-20")},
		{ID: "u9", FullName: "Ashley Cole", Role: models.RoleEmployee, Title: "Defensive Wall", CreatedAt: day("2024-05-01")},
		{ID: "u10", FullName: "Andrés Iniesta", Role: models.RoleEmployee, Title: "The Brain", CreatedAt: day("2024-05-10")},
		{ID: "u11", FullName: "Pedro León", Role: models.RoleEmployee, Title: "Crossing Specialist", CreatedAt: day("2024-05-15")},
		{ID: "u12", FullName: "Ogro Fabbiani", Role: models.RoleEmployee, Title: "Creative Tank", CreatedAt: day("2024-06-01")},
		{ID: "u13", FullName: "Pisculichi", Role: models.RoleEmployee, Title: "Velvet Left Foot", CreatedAt: day("2024-06-05")},
		{ID: "u14", FullName: "Pepe Sand", Role: models.RoleEmployee, Title: "Eternal Scorer", CreatedAt: day("2024-06-10")},
		{ID: "u15", FullName: "Agustín Orión", Role: models.RoleEmployee, Title: "Derby Keeper", CreatedAt: day("2024-06-15")},
		{ID: "u16", FullName: "Carlos Mayada", Role: models.RoleEmployee, Title: "Utility Player", CreatedAt: day("2024-06-20")},
		{ID: "u17", FullName: "Pulga Rodríguez", Role: models.RoleEmployee, Title: "Simoca Magic", CreatedAt: day("2024-06-25")},
	}
	for _, profile := range profiles {
		if err := s.seedProfile(ctx, profile); err != nil {
			slog.Error("Failed to seed profile", "profile_id", profile.ID, "error", err)
		}
	}

	products := []models.Product{
		{ID: 1, Name: "Complex Assembly A", ValueWeight: 3.5, StandardSeconds: 1800, DifficultyLevel: 4, Active: true, CreatedAt: day("2024-01-01")},
		{ID: 2, Name: "Standard Review B", ValueWeight: 1.5, StandardSeconds: 600, DifficultyLevel: 2, Active: true, CreatedAt: day("2024-01-01")},
		{ID: 3, Name: "Premium Process C", ValueWeight: 5.0, StandardSeconds: 3600, DifficultyLevel: 5, Active: true, CreatedAt: day("2024-01-01")},
		{ID: 4, Name: "Routine Task D", ValueWeight: 1.0, StandardSeconds: 300, DifficultyLevel: 1, Active: true, CreatedAt: day("2024-01-15")},
		{ID: 5, Name: "Calibration E", ValueWeight: 2.5, StandardSeconds: 900, DifficultyLevel: 3, Active: false, CreatedAt: day("2024-02-01")},
	}
	for _, product := range products {
		if err := s.store.CreateProduct(ctx, &product); err != nil {
			slog.Error("Failed to seed product", "product_id", product.ID, "error", err)
		}
	}

	sessions := []models.WorkSession{
		{ID: 1, EmployeeID: "u3", ProductID: 1, StartedAt: stamp("2025-02-01T08:00:00"), EndedAt: stampPtr("2025-02-01T08:28:00"), TotalSeconds: 1680},
		{ID: 2, EmployeeID: "u3", ProductID: 2, StartedAt: stamp("2025-02-01T09:00:00"), EndedAt: stampPtr("2025-02-01T09:09:00"), TotalSeconds: 540},
		{ID: 3, EmployeeID: "u4", ProductID: 1, StartedAt: stamp("2025-02-01T08:30:00"), EndedAt: stampPtr("2025-02-01T09:10:00"), TotalSeconds: 2400},
		{ID: 4, EmployeeID: "u5", ProductID: 3, StartedAt: stamp("2025-02-01T08:00:00"), EndedAt: stampPtr("2025-02-01T09:05:00"), TotalSeconds: 3900},
		{ID: 5, EmployeeID: "u6", ProductID: 2, StartedAt: stamp("2025-02-01T08:15:00"), EndedAt: stampPtr("2025-02-01T08:23:00"), TotalSeconds: 480},
		{ID: 6, EmployeeID: "u3", ProductID: 3, StartedAt: stamp("2025-02-02T08:00:00"), EndedAt: stampPtr("2025-02-02T09:50:00"), TotalSeconds: 6600},
		{ID: 7, EmployeeID: "u4", ProductID: 4, StartedAt: stamp("2025-02-02T10:00:00"), EndedAt: stampPtr("2025-02-02T10:06:00"), TotalSeconds: 360},
		{ID: 8, EmployeeID: "u6", ProductID: 1, StartedAt: stamp("2025-02-03T08:00:00"), EndedAt: stampPtr("2025-02-03T08:27:00"), TotalSeconds: 1620},
	}
	for _, session := range sessions {
		if err := s.store.CreateSession(ctx, &session); err != nil {
			slog.Error("Failed to seed work session", "session_id", session.ID, "error", err)
		}
	}

	evaluations := []models.Evaluation{
		{ID: 1, EmployeeID: "u3", ResolutionScore: 88, ComplianceScore: 92, IdleSeconds: 1200, PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
		{ID: 2, EmployeeID: "u4", ResolutionScore: 72, ComplianceScore: 80, IdleSeconds: 2400, PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
		{ID: 3, EmployeeID: "u5", ResolutionScore: 65, ComplianceScore: 70, IdleSeconds: 3600, PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
		{ID: 4, EmployeeID: "u6", ResolutionScore: 91, ComplianceScore: 88, IdleSeconds: 900, PeriodStart: day("2025-02-01"), PeriodEnd: day("2025-02-28")},
	}
	for _, eval := range evaluations {
		if err := s.store.CreateEvaluation(ctx, &eval); err != nil {
			slog.Error("Failed to seed evaluation", "evaluation_id", eval.ID, "error", err)
		}
	}

	notes := []models.InternalNote{
		{ID: 1, EmployeeID: "u3", Note: "Excellent performance on complex tasks. Promotion candidate.", AuthorID: "u1", Private: true},
		{ID: 2, EmployeeID: "u4", Note: "Needs to improve assembly speed. Schedule training.", AuthorID: "u1", Private: true},
		{ID: 3, EmployeeID: "u5", Note: "Adaptation period. Monitor next month.", AuthorID: "u2", Private: false},
	}
	for _, note := range notes {
		if err := s.store.AddNote(ctx, &note); err != nil {
			slog.Error("Failed to seed internal note", "note_id", note.ID, "error", err)
		}
	}

	if err := s.seedConfig(ctx); err != nil {
		return fmt.Errorf("failed to seed system config: %w", err)
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// isSeedingComplete checks whether the fixture set is already present.
func (s *DatabaseSeeder) isSeedingComplete(ctx context.Context) bool {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return false
	}
	return len(profiles) > 0
}

// seedProfile seeds a single profile (idempotent)
func (s *DatabaseSeeder) seedProfile(ctx context.Context, profile models.Profile) error {
	existing, err := s.store.GetProfile(ctx, profile.ID)
	if err != nil {
		return fmt.Errorf("error checking profile %s: %w", profile.ID, err)
	}
	if existing != nil {
		slog.Info("Profile already exists, skipping", "profile_id", profile.ID)
		return nil
	}
	return s.store.CreateProfile(ctx, &profile)
}

// seedConfig creates the singleton weight row from the configured defaults.
func (s *DatabaseSeeder) seedConfig(ctx context.Context) error {
	existing, err := s.store.GetConfig(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("System config already exists, skipping")
		return nil
	}
	return s.store.CreateConfig(ctx, &models.SystemConfig{
		VelocityWeight:     s.weights.Velocity,
		ProductivityWeight: s.weights.Productivity,
		ResolutionWeight:   s.weights.Resolution,
		ComplianceWeight:   s.weights.Compliance,
	})
}
