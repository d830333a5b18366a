package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExamMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExamRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	examRows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "term", "start_date", "end_date", "is_approved", "created_at", "updated_at"}).
		AddRow("midterm", "t1", "Midterm", "2026-1", time.Now(), time.Now(), false, time.Now(), time.Now())
	mock.ExpectQuery("FROM exams WHERE tenant_id = \\$1 AND id = \\$2").
		WithArgs("t1", "midterm").
		WillReturnRows(examRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT class_id FROM exam_classes WHERE exam_id = $1 ORDER BY class_id")).
		WithArgs("midterm").
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow("c1").AddRow("c2"))

	exam, err := repo.FindByID(context.Background(), "t1", "midterm")
	require.NoError(t, err)
	assert.Equal(t, "Midterm", exam.Name)
	assert.Equal(t, []string{"c1", "c2"}, exam.ClassIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryApprove(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectExec("UPDATE exams SET is_approved = TRUE").
		WithArgs(sqlmock.AnyArg(), "t1", "midterm").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.Approve(context.Background(), "t1", "midterm")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryApproveAlreadyApproved(t *testing.T) {
	db, mock, cleanup := newExamMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	// the guarded update touches no rows when the gate already moved
	mock.ExpectExec("UPDATE exams SET is_approved = TRUE").
		WithArgs(sqlmock.AnyArg(), "t1", "midterm").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.Approve(context.Background(), "t1", "midterm")
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
