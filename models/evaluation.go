package models

import (
	"time"

	"gorm.io/gorm"
)

// Evaluation carries externally supplied quality scores for an employee over a
// period. The scoring engine reads resolution/compliance straight from here;
// it is never derived from session data.
type Evaluation struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	EmployeeID      string         `gorm:"size:64;not null;index" json:"employee_id"`
	ResolutionScore int            `gorm:"not null" json:"resolution_score"`
	ComplianceScore int            `gorm:"not null" json:"compliance_score"`
	IdleSeconds     int            `gorm:"not null;default:0" json:"idle_seconds"`
	PeriodStart     time.Time      `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd       time.Time      `gorm:"type:date;not null" json:"period_end"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Employee Profile `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// InternalNote is an append-only remark about an employee, written by an admin
// or manager. Notes are never edited or deleted.
type InternalNote struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	EmployeeID string         `gorm:"size:64;not null;index" json:"employee_id"`
	Note       string         `gorm:"type:text;not null" json:"note"`
	AuthorID   string         `gorm:"size:64;not null" json:"author_id"`
	Private    bool           `gorm:"default:false" json:"private"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Employee Profile `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}
