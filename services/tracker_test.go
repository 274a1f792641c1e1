package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore opens a private in-memory store, migrated and ready.
func newTestStore(t *testing.T) *repository.Store {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	store := repository.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return store
}

func seedTrackerFixtures(t *testing.T, store *repository.Store) {
	t.Helper()
	ctx := context.Background()

	profiles := []models.Profile{
		{ID: "e1", FullName: "Niellendner", Role: models.RoleEmployee},
		{ID: "e2", FullName: "Marcelo", Role: models.RoleEmployee},
	}
	for _, p := range profiles {
		if err := store.CreateProfile(ctx, &p); err != nil {
			t.Fatalf("failed to seed profile: %v", err)
		}
	}

	products := []models.Product{
		{ID: 1, Name: "Complex Assembly A", ValueWeight: 3.5, StandardSeconds: 1800, DifficultyLevel: 4, Active: true},
		{ID: 2, Name: "Calibration E", ValueWeight: 2.5, StandardSeconds: 900, DifficultyLevel: 3, Active: false},
	}
	for _, p := range products {
		if err := store.CreateProduct(ctx, &p); err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}
}

// newTestTracker returns a tracker on a fake clock plus the function to
// advance it.
func newTestTracker(t *testing.T, store *repository.Store) (*SessionTracker, func(d time.Duration)) {
	t.Helper()

	tracker := NewSessionTracker(store)
	current := time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return current }
	return tracker, func(d time.Duration) { current = current.Add(d) }
}

func TestStartStopRoundTrip(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, advance := newTestTracker(t, store)
	ctx := context.Background()

	session, err := tracker.Start(ctx, "e1", 1)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if session.EndedAt != nil || session.TotalSeconds != 0 {
		t.Errorf("new session should be open with total 0, got ended=%v total=%d", session.EndedAt, session.TotalSeconds)
	}
	if _, active := tracker.Active("e1"); !active {
		t.Error("tracker should report an active session after start")
	}

	advance(90 * time.Second)

	stopped, err := tracker.Stop(ctx, "e1")
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if stopped == nil {
		t.Fatal("stop returned no session")
	}
	if stopped.TotalSeconds != 90 {
		t.Errorf("total_seconds = %d, expected 90", stopped.TotalSeconds)
	}
	if stopped.EndedAt == nil {
		t.Fatal("stopped session should have an end timestamp")
	}
	// The persisted total must equal the wall-clock difference in whole seconds.
	wallClock := int(math.Round(stopped.EndedAt.Sub(stopped.StartedAt).Seconds()))
	if wallClock != stopped.TotalSeconds {
		t.Errorf("end - start = %ds, expected to match total_seconds %d", wallClock, stopped.TotalSeconds)
	}
	if _, active := tracker.Active("e1"); active {
		t.Error("tracker should be idle after stop")
	}
}

func TestStopWhileIdleIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, advance := newTestTracker(t, store)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "e1", 1); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	advance(30 * time.Second)

	first, err := tracker.Stop(ctx, "e1")
	if err != nil || first == nil {
		t.Fatalf("first stop failed: session=%v err=%v", first, err)
	}

	// Second stop while idle changes nothing.
	second, err := tracker.Stop(ctx, "e1")
	if err != nil {
		t.Fatalf("second stop errored: %v", err)
	}
	if second != nil {
		t.Errorf("second stop should be a no-op, got session %d", second.ID)
	}

	persisted, err := store.GetSession(ctx, first.ID)
	if err != nil || persisted == nil {
		t.Fatalf("failed to reload session: %v", err)
	}
	if persisted.TotalSeconds != 30 {
		t.Errorf("total_seconds changed to %d after idle stop, expected 30", persisted.TotalSeconds)
	}
}

func TestStartWhileActiveRejected(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, _ := newTestTracker(t, store)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "e1", 1); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if _, err := tracker.Start(ctx, "e1", 1); !errors.Is(err, ErrSessionAlreadyOpen) {
		t.Errorf("second start returned %v, expected ErrSessionAlreadyOpen", err)
	}
}

func TestOpenSessionsKeyedByEmployee(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, advance := newTestTracker(t, store)
	ctx := context.Background()

	// One open session per employee, not one system-wide.
	if _, err := tracker.Start(ctx, "e1", 1); err != nil {
		t.Fatalf("start for e1 failed: %v", err)
	}
	if _, err := tracker.Start(ctx, "e2", 1); err != nil {
		t.Fatalf("start for e2 failed: %v", err)
	}
	if got := len(tracker.ActiveSessions()); got != 2 {
		t.Fatalf("active sessions = %d, expected 2", got)
	}

	advance(10 * time.Second)
	if _, err := tracker.Stop(ctx, "e1"); err != nil {
		t.Fatalf("stop for e1 failed: %v", err)
	}
	if _, active := tracker.Active("e2"); !active {
		t.Error("stopping e1 must not touch e2's open session")
	}
}

func TestStartPreconditions(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, _ := newTestTracker(t, store)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "ghost", 1); !errors.Is(err, ErrUnknownEmployee) {
		t.Errorf("unknown employee returned %v, expected ErrUnknownEmployee", err)
	}
	if _, err := tracker.Start(ctx, "e1", 99); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("unknown product returned %v, expected ErrUnknownProduct", err)
	}
	if _, err := tracker.Start(ctx, "e1", 2); !errors.Is(err, ErrInactiveProduct) {
		t.Errorf("inactive product returned %v, expected ErrInactiveProduct", err)
	}
}

func TestElapsedAndEfficiencyPreview(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, advance := newTestTracker(t, store)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "e1", 1); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	// Right at start, elapsed is 0 and the preview sits at the ceiling.
	if eff, ok := tracker.EfficiencyPreview("e1"); !ok || eff != EfficiencyCeiling {
		t.Errorf("efficiency at t=0 = %d (ok=%v), expected ceiling %d", eff, ok, EfficiencyCeiling)
	}

	// Standard 1800s at 900s elapsed: round(1800/900*100) = 200.
	advance(900 * time.Second)
	if elapsed, ok := tracker.Elapsed("e1"); !ok || elapsed != 900 {
		t.Errorf("elapsed = %d (ok=%v), expected 900", elapsed, ok)
	}
	if eff, ok := tracker.EfficiencyPreview("e1"); !ok || eff != 200 {
		t.Errorf("efficiency = %d (ok=%v), expected 200", eff, ok)
	}

	if _, ok := tracker.Elapsed("e2"); ok {
		t.Error("elapsed should report nothing for an idle employee")
	}
}

func TestStopAllFinalizesEverything(t *testing.T) {
	store := newTestStore(t)
	seedTrackerFixtures(t, store)
	tracker, advance := newTestTracker(t, store)
	ctx := context.Background()

	if _, err := tracker.Start(ctx, "e1", 1); err != nil {
		t.Fatalf("start for e1 failed: %v", err)
	}
	if _, err := tracker.Start(ctx, "e2", 1); err != nil {
		t.Fatalf("start for e2 failed: %v", err)
	}

	advance(45 * time.Second)
	tracker.StopAll(ctx)

	if got := len(tracker.ActiveSessions()); got != 0 {
		t.Fatalf("active sessions = %d after StopAll, expected 0", got)
	}
	sessions, err := store.ListSessions(ctx)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	for _, s := range sessions {
		if !s.Finished() {
			t.Errorf("session %d left open after StopAll", s.ID)
		}
		if s.TotalSeconds != 45 {
			t.Errorf("session %d total = %d, expected 45", s.ID, s.TotalSeconds)
		}
	}
}
