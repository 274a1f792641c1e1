package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/jalvarez/statline/backend/models"
	"gorm.io/gorm"
)

// Work session operations

func (s *Store) CreateSession(ctx context.Context, session *models.WorkSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create work session", "error", err)
		return err
	}
	slog.Info("Work session created", "session_id", session.ID, "employee_id", session.EmployeeID)
	return nil
}

func (s *Store) GetSession(ctx context.Context, id uint) (*models.WorkSession, error) {
	var session models.WorkSession
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		slog.Error("Failed to get work session", "error", err, "session_id", id)
		return nil, err
	}
	return &session, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]models.WorkSession, error) {
	var sessions []models.WorkSession
	if err := s.db.WithContext(ctx).Order("started_at").Find(&sessions).Error; err != nil {
		slog.Error("Failed to list work sessions", "error", err)
		return nil, err
	}
	return sessions, nil
}

func (s *Store) SessionsForEmployee(ctx context.Context, employeeID string) ([]models.WorkSession, error) {
	var sessions []models.WorkSession
	err := s.db.WithContext(ctx).Where("employee_id = ?", employeeID).Order("started_at").Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get work sessions", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return sessions, nil
}

// FinalizeSession stamps the end time and total on an open session. The guard
// on ended_at makes finalization a one-shot: a session already closed is left
// untouched, keeping finished records immutable.
func (s *Store) FinalizeSession(ctx context.Context, id uint, endedAt time.Time, totalSeconds int) error {
	result := s.db.WithContext(ctx).Model(&models.WorkSession{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(map[string]interface{}{
			"ended_at":      endedAt,
			"total_seconds": totalSeconds,
		})
	if result.Error != nil {
		slog.Error("Failed to finalize work session", "error", result.Error, "session_id", id)
		return result.Error
	}
	if result.RowsAffected == 0 {
		slog.Warn("Finalize skipped, session missing or already closed", "session_id", id)
		return nil
	}
	slog.Info("Work session finalized", "session_id", id, "total_seconds", totalSeconds)
	return nil
}

// Evaluation operations

func (s *Store) CreateEvaluation(ctx context.Context, eval *models.Evaluation) error {
	if err := s.db.WithContext(ctx).Create(eval).Error; err != nil {
		slog.Error("Failed to create evaluation", "error", err)
		return err
	}
	slog.Info("Evaluation created", "evaluation_id", eval.ID, "employee_id", eval.EmployeeID)
	return nil
}

func (s *Store) ListEvaluations(ctx context.Context) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	if err := s.db.WithContext(ctx).Order("period_end").Find(&evals).Error; err != nil {
		slog.Error("Failed to list evaluations", "error", err)
		return nil, err
	}
	return evals, nil
}

// Internal note operations

// AddNote appends a note. Notes are never mutated or removed afterwards.
func (s *Store) AddNote(ctx context.Context, note *models.InternalNote) error {
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		slog.Error("Failed to add internal note", "error", err)
		return err
	}
	slog.Info("Internal note added", "note_id", note.ID, "employee_id", note.EmployeeID, "author_id", note.AuthorID)
	return nil
}

func (s *Store) ListNotes(ctx context.Context) ([]models.InternalNote, error) {
	var notes []models.InternalNote
	if err := s.db.WithContext(ctx).Order("id").Find(&notes).Error; err != nil {
		slog.Error("Failed to list internal notes", "error", err)
		return nil, err
	}
	return notes, nil
}

// NotesForEmployee returns the notes about one employee. With includePrivate
// unset, notes flagged private are filtered out.
func (s *Store) NotesForEmployee(ctx context.Context, employeeID string, includePrivate bool) ([]models.InternalNote, error) {
	var notes []models.InternalNote
	query := s.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if !includePrivate {
		query = query.Where("private = ?", false)
	}
	if err := query.Order("id").Find(&notes).Error; err != nil {
		slog.Error("Failed to get internal notes", "error", err, "employee_id", employeeID)
		return nil, err
	}
	return notes, nil
}
