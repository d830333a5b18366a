package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunexa/assessment-api/internal/models"
)

// GradeScaleRepository stores per-tenant grade-band tables.
type GradeScaleRepository struct {
	db *sqlx.DB
}

// NewGradeScaleRepository creates a new grade scale repository.
func NewGradeScaleRepository(db *sqlx.DB) *GradeScaleRepository {
	return &GradeScaleRepository{db: db}
}

// ListByTenant returns the tenant's bands ordered from lowest to highest range.
func (r *GradeScaleRepository) ListByTenant(ctx context.Context, tenantID string) ([]models.GradeBand, error) {
	const query = `SELECT id, tenant_id, grade, min_percentage, max_percentage, gpa, remarks, position, created_at, updated_at
        FROM grade_bands WHERE tenant_id = $1 ORDER BY min_percentage`
	var bands []models.GradeBand
	if err := r.db.SelectContext(ctx, &bands, query, tenantID); err != nil {
		return nil, fmt.Errorf("list grade bands: %w", err)
	}
	return bands, nil
}

// ReplaceScale atomically swaps the tenant's grade-band table.
func (r *GradeScaleRepository) ReplaceScale(ctx context.Context, tenantID string, bands []models.GradeBand) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM grade_bands WHERE tenant_id = $1", tenantID); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("clear grade bands: %w", err)
	}
	now := time.Now().UTC()
	for i := range bands {
		bands[i].TenantID = tenantID
		bands[i].Position = i
		if bands[i].ID == "" {
			bands[i].ID = uuid.NewString()
		}
		if bands[i].CreatedAt.IsZero() {
			bands[i].CreatedAt = now
		}
		bands[i].UpdatedAt = now
		const query = `INSERT INTO grade_bands (id, tenant_id, grade, min_percentage, max_percentage, gpa, remarks, position, created_at, updated_at)
                VALUES (:id, :tenant_id, :grade, :min_percentage, :max_percentage, :gpa, :remarks, :position, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, bands[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert grade band: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade bands: %w", err)
	}
	return nil
}

// FindPromotionPolicy loads the tenant's promotion policy row.
func (r *GradeScaleRepository) FindPromotionPolicy(ctx context.Context, tenantID string) (*models.PromotionPolicy, error) {
	const query = `SELECT tenant_id, mode, threshold, max_failed_subjects, updated_at
        FROM promotion_policies WHERE tenant_id = $1`
	var policy models.PromotionPolicy
	if err := r.db.GetContext(ctx, &policy, query, tenantID); err != nil {
		return nil, fmt.Errorf("find promotion policy: %w", err)
	}
	return &policy, nil
}

// UpsertPromotionPolicy stores the tenant's promotion policy.
func (r *GradeScaleRepository) UpsertPromotionPolicy(ctx context.Context, policy *models.PromotionPolicy) error {
	policy.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO promotion_policies (tenant_id, mode, threshold, max_failed_subjects, updated_at)
        VALUES (:tenant_id, :mode, :threshold, :max_failed_subjects, :updated_at)
        ON CONFLICT (tenant_id)
        DO UPDATE SET mode = EXCLUDED.mode, threshold = EXCLUDED.threshold, max_failed_subjects = EXCLUDED.max_failed_subjects, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, policy); err != nil {
		return fmt.Errorf("upsert promotion policy: %w", err)
	}
	return nil
}
