package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunexa/assessment-api/internal/models"
)

// PromotionRepository persists promotion runs and their decision log.
type PromotionRepository struct {
	db *sqlx.DB
}

// NewPromotionRepository creates a new promotion repository.
func NewPromotionRepository(db *sqlx.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// CreateRun stores the run header.
func (r *PromotionRepository) CreateRun(ctx context.Context, run *models.PromotionRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.ExecutedAt.IsZero() {
		run.ExecutedAt = time.Now().UTC()
	}
	const query = `INSERT INTO promotion_runs (id, tenant_id, mode, exam_id, from_class_id, to_class_id, to_section, executed_by, executed_at)
        VALUES (:id, :tenant_id, :mode, :exam_id, :from_class_id, :to_class_id, :to_section, :executed_by, :executed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("create promotion run: %w", err)
	}
	return nil
}

// UpsertDecisions writes the per-student decisions. A retried run reuses the
// original run ID, so the (tenant_id, run_id, student_id) conflict target
// lands repeated decisions on the same rows.
func (r *PromotionRepository) UpsertDecisions(ctx context.Context, decisions []models.PromotionDecision) error {
	if len(decisions) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	for i := range decisions {
		if decisions[i].ID == "" {
			decisions[i].ID = uuid.NewString()
		}
		if decisions[i].CreatedAt.IsZero() {
			decisions[i].CreatedAt = now
		}
		const query = `INSERT INTO promotion_decisions (id, tenant_id, run_id, student_id, from_class_id, to_class_id, to_section, outcome, reason, created_at)
                VALUES (:id, :tenant_id, :run_id, :student_id, :from_class_id, :to_class_id, :to_section, :outcome, :reason, :created_at)
                ON CONFLICT (tenant_id, run_id, student_id)
                DO UPDATE SET outcome = EXCLUDED.outcome, reason = EXCLUDED.reason`
		if _, err := tx.NamedExecContext(ctx, query, decisions[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("upsert promotion decision: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit promotion decisions: %w", err)
	}
	return nil
}

// FindRun loads a run header.
func (r *PromotionRepository) FindRun(ctx context.Context, tenantID, runID string) (*models.PromotionRun, error) {
	const query = `SELECT id, tenant_id, mode, exam_id, from_class_id, to_class_id, to_section, executed_by, executed_at
        FROM promotion_runs WHERE tenant_id = $1 AND id = $2`
	var run models.PromotionRun
	if err := r.db.GetContext(ctx, &run, query, tenantID, runID); err != nil {
		return nil, fmt.Errorf("find promotion run: %w", err)
	}
	return &run, nil
}

// ListDecisions returns the decision log of a run.
func (r *PromotionRepository) ListDecisions(ctx context.Context, tenantID, runID string) ([]models.PromotionDecision, error) {
	const query = `SELECT id, tenant_id, run_id, student_id, from_class_id, to_class_id, to_section, outcome, reason, created_at
        FROM promotion_decisions WHERE tenant_id = $1 AND run_id = $2 ORDER BY student_id`
	var decisions []models.PromotionDecision
	if err := r.db.SelectContext(ctx, &decisions, query, tenantID, runID); err != nil {
		return nil, fmt.Errorf("list promotion decisions: %w", err)
	}
	return decisions, nil
}

// FindAutoRun returns the most recent automatic run for an exam/class pair,
// used to make retried runs reuse the original run identity.
func (r *PromotionRepository) FindAutoRun(ctx context.Context, tenantID, examID, fromClassID string) (*models.PromotionRun, error) {
	const query = `SELECT id, tenant_id, mode, exam_id, from_class_id, to_class_id, to_section, executed_by, executed_at
        FROM promotion_runs
        WHERE tenant_id = $1 AND mode = $2 AND exam_id = $3 AND from_class_id = $4
        ORDER BY executed_at DESC LIMIT 1`
	var run models.PromotionRun
	if err := r.db.GetContext(ctx, &run, query, tenantID, models.PromotionModeAuto, examID, fromClassID); err != nil {
		return nil, fmt.Errorf("find auto promotion run: %w", err)
	}
	return &run, nil
}
