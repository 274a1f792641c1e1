package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile roles. Roles gate actions in the presentation layer only; the
// backend does not enforce them beyond convention.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type Profile struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	FullName  string         `gorm:"size:255;not null" json:"full_name"`
	Role      string         `gorm:"size:50;not null;default:'employee';check:role IN ('admin', 'manager', 'employee')" json:"role"`
	Title     string         `gorm:"size:255" json:"title,omitempty"`
	AvatarURL string         `gorm:"size:500" json:"avatar_url,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships. Deleting a profile does not cascade; sessions, notes and
	// evaluations keep their employee id and are resolved (or not) at read time.
	Sessions    []WorkSession  `gorm:"foreignKey:EmployeeID" json:"sessions,omitempty"`
	Evaluations []Evaluation   `gorm:"foreignKey:EmployeeID" json:"evaluations,omitempty"`
	Notes       []InternalNote `gorm:"foreignKey:EmployeeID" json:"notes,omitempty"`
}
