package models

import "time"

// GradeBand maps a percentage range to a letter grade and GPA value.
// A tenant's bands must partition [0,100] without gaps or overlaps.
type GradeBand struct {
	ID            string    `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"tenant_id"`
	Grade         string    `db:"grade" json:"grade"`
	MinPercentage float64   `db:"min_percentage" json:"min_percentage"`
	MaxPercentage float64   `db:"max_percentage" json:"max_percentage"`
	GPA           float64   `db:"gpa" json:"gpa"`
	Remarks       string    `db:"remarks" json:"remarks"`
	Position      int       `db:"position" json:"position"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Classification is the outcome of mapping a percentage onto the grade scale.
type Classification struct {
	Grade   string  `json:"grade"`
	GPA     float64 `json:"gpa"`
	Remarks string  `json:"remarks"`
}
