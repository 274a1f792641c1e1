package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jalvarez/statline/backend/models"
	"github.com/jalvarez/statline/backend/repository"
)

// Capped ceiling for the live efficiency preview shown while a session runs.
const EfficiencyCeiling = 999

var (
	ErrSessionAlreadyOpen = errors.New("employee already has an open session")
	ErrUnknownEmployee    = errors.New("employee not found")
	ErrUnknownProduct     = errors.New("product not found")
	ErrInactiveProduct    = errors.New("product is not active for new sessions")
)

// TickPublisher receives the 1 Hz live stopwatch frames. Purely a presentation
// concern; persisted totals never come from ticks.
type TickPublisher interface {
	Publish(employeeID string, payload []byte)
}

// SessionTracker owns the open-session pointers, keyed by employee id so each
// employee has at most one open session at a time. The pointer lives only in
// memory; the underlying WorkSession record is written through the store at
// start and finalized exactly once at stop.
type SessionTracker struct {
	store          *repository.Store
	activeSessions map[string]*ActiveSession
	mutex          sync.RWMutex
	publisher      TickPublisher
	now            func() time.Time
	done           chan struct{}
	closeOnce      sync.Once
}

// ActiveSession pairs an open WorkSession id with the wall clock captured at
// start. Elapsed time is always recomputed from StartedAt, never accumulated.
type ActiveSession struct {
	SessionID       uint      `json:"session_id"`
	EmployeeID      string    `json:"employee_id"`
	ProductID       uint      `json:"product_id"`
	StandardSeconds int       `json:"standard_seconds"`
	StartedAt       time.Time `json:"started_at"`
}

// TickFrame is the payload pushed to live stopwatch subscribers once a second.
type TickFrame struct {
	Type           string `json:"type"`
	EmployeeID     string `json:"employee_id"`
	SessionID      uint   `json:"session_id"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Efficiency     int    `json:"efficiency"`
}

func NewSessionTracker(store *repository.Store) *SessionTracker {
	return &SessionTracker{
		store:          store,
		activeSessions: make(map[string]*ActiveSession),
		now:            time.Now,
		done:           make(chan struct{}),
	}
}

// SetPublisher wires the live feed. Optional; without it the tracker simply
// does not broadcast.
func (t *SessionTracker) SetPublisher(p TickPublisher) {
	t.publisher = p
}

// Start opens a new work session for the employee. A second start for the same
// employee is rejected to preserve the one-open-session-per-employee invariant;
// unknown employees and unknown or inactive products are rejected as well.
func (t *SessionTracker) Start(ctx context.Context, employeeID string, productID uint) (*models.WorkSession, error) {
	profile, err := t.store.GetProfile(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrUnknownEmployee
	}

	product, err := t.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrUnknownProduct
	}
	if !product.Active {
		return nil, ErrInactiveProduct
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, exists := t.activeSessions[employeeID]; exists {
		return nil, ErrSessionAlreadyOpen
	}

	startedAt := t.now()
	session := &models.WorkSession{
		EmployeeID:   employeeID,
		ProductID:    productID,
		StartedAt:    startedAt,
		EndedAt:      nil,
		TotalSeconds: 0,
	}
	if err := t.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	t.activeSessions[employeeID] = &ActiveSession{
		SessionID:       session.ID,
		EmployeeID:      employeeID,
		ProductID:       productID,
		StandardSeconds: product.StandardSeconds,
		StartedAt:       startedAt,
	}

	slog.Info("Work session started", "session_id", session.ID, "employee_id", employeeID, "product_id", productID)
	return session, nil
}

// Stop finalizes the employee's open session: total = now - start rounded to
// whole seconds. A stop with no open session is a silent no-op, which also
// makes back-to-back stops idempotent.
func (t *SessionTracker) Stop(ctx context.Context, employeeID string) (*models.WorkSession, error) {
	t.mutex.Lock()
	active, exists := t.activeSessions[employeeID]
	if exists {
		delete(t.activeSessions, employeeID)
	}
	t.mutex.Unlock()

	if !exists {
		slog.Info("Stop ignored, no open session", "employee_id", employeeID)
		return nil, nil
	}

	endedAt := t.now()
	elapsed := int(math.Round(endedAt.Sub(active.StartedAt).Seconds()))
	if err := t.store.FinalizeSession(ctx, active.SessionID, endedAt, elapsed); err != nil {
		return nil, err
	}

	slog.Info("Work session stopped", "session_id", active.SessionID, "employee_id", employeeID, "total_seconds", elapsed)
	return t.store.GetSession(ctx, active.SessionID)
}

// StopAll finalizes every open session. Called on logout so abandoned sessions
// are closed with their elapsed time instead of dangling open forever.
func (t *SessionTracker) StopAll(ctx context.Context) {
	t.mutex.Lock()
	ids := make([]string, 0, len(t.activeSessions))
	for id := range t.activeSessions {
		ids = append(ids, id)
	}
	t.mutex.Unlock()

	for _, id := range ids {
		if _, err := t.Stop(ctx, id); err != nil {
			slog.Error("Failed to stop session during logout", "error", err, "employee_id", id)
		}
	}
}

// Active returns the employee's open-session pointer, if any.
func (t *SessionTracker) Active(employeeID string) (ActiveSession, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if active, exists := t.activeSessions[employeeID]; exists {
		return *active, true
	}
	return ActiveSession{}, false
}

// ActiveSessions snapshots all open-session pointers.
func (t *SessionTracker) ActiveSessions() []ActiveSession {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	out := make([]ActiveSession, 0, len(t.activeSessions))
	for _, active := range t.activeSessions {
		out = append(out, *active)
	}
	return out
}

// Elapsed recomputes the running time of the employee's open session from the
// wall clock. Presentation only; it mutates nothing.
func (t *SessionTracker) Elapsed(employeeID string) (int, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	active, exists := t.activeSessions[employeeID]
	if !exists {
		return 0, false
	}
	return int(math.Round(t.now().Sub(active.StartedAt).Seconds())), true
}

// EfficiencyPreview estimates how the running session tracks against the
// product's standard duration, capped at the display ceiling. Derived, never
// persisted.
func (t *SessionTracker) EfficiencyPreview(employeeID string) (int, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	active, exists := t.activeSessions[employeeID]
	if !exists {
		return 0, false
	}
	elapsed := t.now().Sub(active.StartedAt).Seconds()
	if elapsed < 1 {
		return EfficiencyCeiling, true
	}
	ratio := math.Round(float64(active.StandardSeconds) / elapsed * 100)
	return int(math.Min(ratio, EfficiencyCeiling)), true
}

// Run drives the 1 Hz live feed until Shutdown. Each tick republishes elapsed
// time and the efficiency preview for every open session.
func (t *SessionTracker) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.broadcastTick()
		}
	}
}

// Shutdown stops the live feed. Open sessions are untouched; the feed has no
// cleanup obligations beyond stopping the timer.
func (t *SessionTracker) Shutdown() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
}

func (t *SessionTracker) broadcastTick() {
	if t.publisher == nil {
		return
	}

	for _, active := range t.ActiveSessions() {
		elapsed, ok := t.Elapsed(active.EmployeeID)
		if !ok {
			continue
		}
		efficiency, _ := t.EfficiencyPreview(active.EmployeeID)
		frame := TickFrame{
			Type:           "tick",
			EmployeeID:     active.EmployeeID,
			SessionID:      active.SessionID,
			ElapsedSeconds: elapsed,
			Efficiency:     efficiency,
		}
		payload, err := json.Marshal(frame)
		if err != nil {
			slog.Error("Failed to marshal tick frame", "error", err)
			continue
		}
		t.publisher.Publish(active.EmployeeID, payload)
	}
}
