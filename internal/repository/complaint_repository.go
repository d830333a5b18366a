package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunexa/assessment-api/internal/models"
)

// ComplaintRepository persists grade disputes.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new complaint repository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

const complaintColumns = `id, tenant_id, exam_id, class_id, subject_id, student_id, current_mark, reason, status, resolution_note, resolved_by, created_at, resolved_at`

// Create stores a new pending complaint.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now().UTC()
	}
	complaint.Status = models.ComplaintStatusPending
	const query = `INSERT INTO complaints (id, tenant_id, exam_id, class_id, subject_id, student_id, current_mark, reason, status, created_at)
        VALUES (:id, :tenant_id, :exam_id, :class_id, :subject_id, :student_id, :current_mark, :reason, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID loads a complaint.
func (r *ComplaintRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Complaint, error) {
	query := fmt.Sprintf("SELECT %s FROM complaints WHERE tenant_id = $1 AND id = $2", complaintColumns)
	var complaint models.Complaint
	if err := r.db.GetContext(ctx, &complaint, query, tenantID, id); err != nil {
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return &complaint, nil
}

// List returns complaints matching the filter.
func (r *ComplaintRepository) List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error) {
	query := fmt.Sprintf("SELECT %s FROM complaints WHERE tenant_id = $1", complaintColumns)
	args := []interface{}{filter.TenantID}
	if filter.ExamID != "" {
		args = append(args, filter.ExamID)
		query += fmt.Sprintf(" AND exam_id = $%d", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	var complaints []models.Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	return complaints, nil
}

// Resolve transitions a pending complaint to resolved. Returns sql.ErrNoRows
// when the complaint was already resolved by a concurrent request.
func (r *ComplaintRepository) Resolve(ctx context.Context, tenantID, id, resolvedBy, note string) error {
	const query = `UPDATE complaints SET status = $1, resolution_note = $2, resolved_by = $3, resolved_at = $4
        WHERE tenant_id = $5 AND id = $6 AND status = $7`
	result, err := r.db.ExecContext(ctx, query, models.ComplaintStatusResolved, note, resolvedBy, time.Now().UTC(), tenantID, id, models.ComplaintStatusPending)
	if err != nil {
		return fmt.Errorf("resolve complaint: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve complaint rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
