package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edunexa/assessment-api/internal/models"
)

// ExamRepository handles exam lookup and the approval gate.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository creates a new exam repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// FindByID loads an exam with its class list.
func (r *ExamRepository) FindByID(ctx context.Context, tenantID, examID string) (*models.Exam, error) {
	const query = `SELECT id, tenant_id, name, term, start_date, end_date, is_approved, created_at, updated_at
        FROM exams WHERE tenant_id = $1 AND id = $2`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, tenantID, examID); err != nil {
		return nil, fmt.Errorf("find exam: %w", err)
	}
	const classQuery = `SELECT class_id FROM exam_classes WHERE exam_id = $1 ORDER BY class_id`
	if err := r.db.SelectContext(ctx, &exam.ClassIDs, classQuery, examID); err != nil {
		return nil, fmt.Errorf("list exam classes: %w", err)
	}
	return &exam, nil
}

// Approve flips the publication gate. Returns the number of rows touched so
// callers can detect a repeated approval.
func (r *ExamRepository) Approve(ctx context.Context, tenantID, examID string) (int64, error) {
	const query = `UPDATE exams SET is_approved = TRUE, updated_at = $1
        WHERE tenant_id = $2 AND id = $3 AND is_approved = FALSE`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), tenantID, examID)
	if err != nil {
		return 0, fmt.Errorf("approve exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("approve exam rows: %w", err)
	}
	return affected, nil
}
