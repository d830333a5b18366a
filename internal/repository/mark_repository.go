package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunexa/assessment-api/internal/models"
)

// MarkRepository handles raw mark persistence.
type MarkRepository struct {
	db *sqlx.DB
}

// NewMarkRepository creates a new mark repository.
func NewMarkRepository(db *sqlx.DB) *MarkRepository {
	return &MarkRepository{db: db}
}

const markColumns = `id, tenant_id, exam_id, class_id, subject_id, student_id, marks_obtained, max_marks, remarks, created_at, updated_at`

// List returns mark entries matching the filter. TenantID is always applied.
func (r *MarkRepository) List(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error) {
	query := fmt.Sprintf("SELECT %s FROM marks WHERE tenant_id = $1", markColumns)
	args := []interface{}{filter.TenantID}
	if filter.ExamID != "" {
		args = append(args, filter.ExamID)
		query += fmt.Sprintf(" AND exam_id = $%d", len(args))
	}
	if filter.ClassID != "" {
		args = append(args, filter.ClassID)
		query += fmt.Sprintf(" AND class_id = $%d", len(args))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		query += fmt.Sprintf(" AND subject_id = $%d", len(args))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		query += fmt.Sprintf(" AND student_id = $%d", len(args))
	}
	query += " ORDER BY subject_id, student_id"
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, args...); err != nil {
		return nil, fmt.Errorf("list marks: %w", err)
	}
	return marks, nil
}

// ListForExamClass returns the full mark set for one exam/class run in a
// stable order so repeated aggregations see identical input.
func (r *MarkRepository) ListForExamClass(ctx context.Context, tenantID, examID, classID string) ([]models.Mark, error) {
	query := fmt.Sprintf(`SELECT %s FROM marks
        WHERE tenant_id = $1 AND exam_id = $2 AND class_id = $3
        ORDER BY created_at, id`, markColumns)
	var marks []models.Mark
	if err := r.db.SelectContext(ctx, &marks, query, tenantID, examID, classID); err != nil {
		return nil, fmt.Errorf("list marks for exam class: %w", err)
	}
	return marks, nil
}

// Upsert inserts or updates a mark entry.
func (r *MarkRepository) Upsert(ctx context.Context, mark *models.Mark) error {
	if mark.ID == "" {
		mark.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if mark.CreatedAt.IsZero() {
		mark.CreatedAt = now
	}
	mark.UpdatedAt = now
	const query = `INSERT INTO marks (id, tenant_id, exam_id, class_id, subject_id, student_id, marks_obtained, max_marks, remarks, created_at, updated_at)
        VALUES (:id, :tenant_id, :exam_id, :class_id, :subject_id, :student_id, :marks_obtained, :max_marks, :remarks, :created_at, :updated_at)
        ON CONFLICT (tenant_id, exam_id, subject_id, student_id)
        DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, max_marks = EXCLUDED.max_marks, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, mark); err != nil {
		return fmt.Errorf("upsert mark: %w", err)
	}
	return nil
}

// BulkUpsert inserts or updates multiple marks in a transaction.
func (r *MarkRepository) BulkUpsert(ctx context.Context, marks []models.Mark) error {
	if len(marks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range marks {
		if marks[i].ID == "" {
			marks[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		if marks[i].CreatedAt.IsZero() {
			marks[i].CreatedAt = now
		}
		marks[i].UpdatedAt = now
		const query = `INSERT INTO marks (id, tenant_id, exam_id, class_id, subject_id, student_id, marks_obtained, max_marks, remarks, created_at, updated_at)
                VALUES (:id, :tenant_id, :exam_id, :class_id, :subject_id, :student_id, :marks_obtained, :max_marks, :remarks, :created_at, :updated_at)
                ON CONFLICT (tenant_id, exam_id, subject_id, student_id)
                DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, max_marks = EXCLUDED.max_marks, remarks = EXCLUDED.remarks, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, marks[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk upsert mark: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit marks: %w", err)
	}
	return nil
}

// FindByExamSubjectStudent loads the single mark a complaint references.
func (r *MarkRepository) FindByExamSubjectStudent(ctx context.Context, tenantID, examID, subjectID, studentID string) (*models.Mark, error) {
	query := fmt.Sprintf(`SELECT %s FROM marks
        WHERE tenant_id = $1 AND exam_id = $2 AND subject_id = $3 AND student_id = $4`, markColumns)
	var mark models.Mark
	if err := r.db.GetContext(ctx, &mark, query, tenantID, examID, subjectID, studentID); err != nil {
		return nil, fmt.Errorf("find mark: %w", err)
	}
	return &mark, nil
}

// CorrectMark applies an administrative mark correction. Used only by the
// dispute flow; regular writes go through Upsert before approval.
func (r *MarkRepository) CorrectMark(ctx context.Context, tenantID, markID string, obtained float64) error {
	const query = `UPDATE marks SET marks_obtained = $1, updated_at = $2 WHERE tenant_id = $3 AND id = $4`
	result, err := r.db.ExecContext(ctx, query, obtained, time.Now().UTC(), tenantID, markID)
	if err != nil {
		return fmt.Errorf("correct mark: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("correct mark rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("correct mark: no row for %s", markID)
	}
	return nil
}
