package models

import "time"

// Exam represents an examination event spanning one or more classes.
// Marks become visible outside staff roles only once IsApproved is true.
type Exam struct {
	ID         string    `db:"id" json:"id"`
	TenantID   string    `db:"tenant_id" json:"tenant_id"`
	Name       string    `db:"name" json:"name"`
	Term       string    `db:"term" json:"term"`
	StartDate  time.Time `db:"start_date" json:"start_date"`
	EndDate    time.Time `db:"end_date" json:"end_date"`
	IsApproved bool      `db:"is_approved" json:"is_approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	ClassIDs   []string  `json:"class_ids,omitempty"`
}
