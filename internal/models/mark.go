package models

import "time"

// Mark represents a single raw mark entry for a student in one subject of an exam.
type Mark struct {
	ID            string    `db:"id" json:"id"`
	TenantID      string    `db:"tenant_id" json:"tenant_id"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	ClassID       string    `db:"class_id" json:"class_id"`
	SubjectID     string    `db:"subject_id" json:"subject_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	MaxMarks      float64   `db:"max_marks" json:"max_marks"`
	Remarks       *string   `db:"remarks" json:"remarks,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MarkFilter constrains mark listing queries. TenantID is mandatory.
type MarkFilter struct {
	TenantID  string
	ExamID    string
	ClassID   string
	SubjectID string
	StudentID string
}
