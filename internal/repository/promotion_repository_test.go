package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunexa/assessment-api/internal/models"
)

func newPromotionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPromotionRepositoryCreateRun(t *testing.T) {
	db, mock, cleanup := newPromotionMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectExec("INSERT INTO promotion_runs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	examID, fromClassID := "midterm", "c1"
	run := &models.PromotionRun{
		TenantID:    "t1",
		Mode:        models.PromotionModeAuto,
		ExamID:      &examID,
		FromClassID: &fromClassID,
		ToClassID:   "c2",
		ToSection:   "A",
		ExecutedBy:  "admin-1",
	}
	err := repo.CreateRun(context.Background(), run)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.ExecutedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRepositoryUpsertDecisions(t *testing.T) {
	db, mock, cleanup := newPromotionMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO promotion_decisions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO promotion_decisions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	decisions := []models.PromotionDecision{
		{TenantID: "t1", RunID: "run-1", StudentID: "s1", FromClassID: "c1", ToClassID: "c2", ToSection: "A", Outcome: models.PromotionOutcomePromoted, Reason: "ok"},
		{TenantID: "t1", RunID: "run-1", StudentID: "s2", FromClassID: "c1", ToClassID: "c2", ToSection: "A", Outcome: models.PromotionOutcomeRetained, Reason: "below threshold"},
	}
	err := repo.UpsertDecisions(context.Background(), decisions)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRepositoryFindAutoRun(t *testing.T) {
	db, mock, cleanup := newPromotionMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "mode", "exam_id", "from_class_id", "to_class_id", "to_section", "executed_by", "executed_at"}).
		AddRow("run-1", "t1", "AUTO", "midterm", "c1", "c2", "A", "admin-1", time.Now())
	mock.ExpectQuery("FROM promotion_runs\\s+WHERE tenant_id = \\$1 AND mode = \\$2 AND exam_id = \\$3 AND from_class_id = \\$4\\s+ORDER BY executed_at DESC LIMIT 1").
		WithArgs("t1", string(models.PromotionModeAuto), "midterm", "c1").
		WillReturnRows(rows)

	run, err := repo.FindAutoRun(context.Background(), "t1", "midterm", "c1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "c2", run.ToClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionRepositoryFindRunMissing(t *testing.T) {
	db, mock, cleanup := newPromotionMock(t)
	defer cleanup()
	repo := NewPromotionRepository(db)

	mock.ExpectQuery("FROM promotion_runs WHERE tenant_id = \\$1 AND id = \\$2").
		WithArgs("t1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindRun(context.Background(), "t1", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
