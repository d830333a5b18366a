package models

import "time"

// ComplaintStatus captures the dispute lifecycle.
type ComplaintStatus string

const (
	ComplaintStatusPending  ComplaintStatus = "PENDING"
	ComplaintStatusResolved ComplaintStatus = "RESOLVED"
)

// Complaint is a student-initiated challenge to a published mark.
type Complaint struct {
	ID             string          `db:"id" json:"id"`
	TenantID       string          `db:"tenant_id" json:"tenant_id"`
	ExamID         string          `db:"exam_id" json:"exam_id"`
	ClassID        string          `db:"class_id" json:"class_id"`
	SubjectID      string          `db:"subject_id" json:"subject_id"`
	StudentID      string          `db:"student_id" json:"student_id"`
	CurrentMark    float64         `db:"current_mark" json:"current_mark"`
	Reason         string          `db:"reason" json:"reason"`
	Status         ComplaintStatus `db:"status" json:"status"`
	ResolutionNote *string         `db:"resolution_note" json:"resolution_note,omitempty"`
	ResolvedBy     *string         `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	ResolvedAt     *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
}

// ComplaintFilter constrains complaint listing queries.
type ComplaintFilter struct {
	TenantID  string
	ExamID    string
	StudentID string
	Status    ComplaintStatus
	Limit     int
	Offset    int
}
