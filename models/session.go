package models

import (
	"time"

	"gorm.io/gorm"
)

// WorkSession records one timed work attempt. A session is open while EndedAt
// is NULL; it is finalized exactly once and immutable afterwards. TotalSeconds
// is computed at stop time from the wall-clock difference, never from ticks.
type WorkSession struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	EmployeeID   string         `gorm:"size:64;not null;index" json:"employee_id"`
	ProductID    uint           `gorm:"not null;index" json:"product_id"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
	TotalSeconds int            `json:"total_seconds"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Employee Profile `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Product  Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// Finished reports whether the session has been finalized.
func (s *WorkSession) Finished() bool {
	return s.EndedAt != nil
}
