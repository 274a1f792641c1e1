package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a unit of work with a value weight and a standard duration.
// StandardSeconds is the denominator of every velocity ratio, so it must be
// positive for the ratio to mean anything. Inactive products are hidden from
// session-start selection but still count in historical stats.
type Product struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	ValueWeight     float64        `gorm:"not null" json:"value_weight"`
	StandardSeconds int            `gorm:"not null;check:standard_seconds > 0" json:"standard_seconds"`
	DifficultyLevel int            `gorm:"not null;default:1;check:difficulty_level BETWEEN 1 AND 5" json:"difficulty_level"`
	Active          bool           `gorm:"default:true" json:"active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sessions []WorkSession `gorm:"foreignKey:ProductID" json:"sessions,omitempty"`
}
