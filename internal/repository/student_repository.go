package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edunexa/assessment-api/internal/models"
)

// StudentRepository exposes the roster queries and class reassignment the
// engine needs. Directory CRUD lives elsewhere.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, tenant_id, full_name, class_id, section, active, created_at, updated_at`

// ListByClass returns the active roster of a class in stable order.
func (r *StudentRepository) ListByClass(ctx context.Context, tenantID, classID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students
        WHERE tenant_id = $1 AND class_id = $2 AND active = TRUE
        ORDER BY created_at, id`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, tenantID, classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return students, nil
}

// FindByIDs returns students keyed by ID.
func (r *StudentRepository) FindByIDs(ctx context.Context, tenantID string, studentIDs []string) (map[string]models.Student, error) {
	if len(studentIDs) == 0 {
		return map[string]models.Student{}, nil
	}
	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, 0, len(studentIDs)+1)
	args = append(args, tenantID)
	for i, id := range studentIDs {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf("SELECT %s FROM students WHERE tenant_id = $1 AND id IN (%s)", studentColumns, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find students: %w", err)
	}
	defer rows.Close()
	result := make(map[string]models.Student, len(studentIDs))
	for rows.Next() {
		var student models.Student
		if err := rows.StructScan(&student); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		result[student.ID] = student
	}
	return result, nil
}

// ReassignClass moves the listed students into the target class/section.
// The update is a no-op for students already assigned there, which keeps
// promotion retries from double-applying.
func (r *StudentRepository) ReassignClass(ctx context.Context, tenantID string, studentIDs []string, toClassID, toSection string) (int64, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(studentIDs))
	args := []interface{}{toClassID, toSection, time.Now().UTC(), tenantID}
	for i, id := range studentIDs {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE students SET class_id = $1, section = $2, updated_at = $3
        WHERE tenant_id = $4 AND id IN (%s) AND (class_id <> $1 OR section <> $2)`, strings.Join(placeholders, ","))
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reassign class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassign class rows: %w", err)
	}
	return affected, nil
}
