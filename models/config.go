package models

import (
	"time"
)

// SystemConfig is the single row holding the global score weights. The intended
// invariant is that the four weights sum to 1.0, but that is enforced at the
// editing surface, not here and not in the scoring engine.
type SystemConfig struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	VelocityWeight     float64   `gorm:"not null" json:"velocity_weight"`
	ProductivityWeight float64   `gorm:"not null" json:"productivity_weight"`
	ResolutionWeight   float64   `gorm:"not null" json:"resolution_weight"`
	ComplianceWeight   float64   `gorm:"not null" json:"compliance_weight"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// WeightSum returns the sum of the four weights. Used by the config editing
// boundary to validate updates; the scoring engine never calls it.
func (c *SystemConfig) WeightSum() float64 {
	return c.VelocityWeight + c.ProductivityWeight + c.ResolutionWeight + c.ComplianceWeight
}
