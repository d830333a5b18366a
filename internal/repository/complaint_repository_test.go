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

func newComplaintMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestComplaintRepositoryCreateForcesPending(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("INSERT INTO complaints").
		WillReturnResult(sqlmock.NewResult(0, 1))

	complaint := &models.Complaint{
		TenantID: "t1", ExamID: "midterm", ClassID: "c1", SubjectID: "math", StudentID: "s1",
		CurrentMark: 38, Reason: "total mismatch on the answer sheet",
		Status: models.ComplaintStatusResolved,
	}
	err := repo.Create(context.Background(), complaint)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintStatusPending, complaint.Status)
	assert.NotEmpty(t, complaint.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryListFiltersByStatus(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "exam_id", "class_id", "subject_id", "student_id", "current_mark", "reason", "status", "resolution_note", "resolved_by", "created_at", "resolved_at"}).
		AddRow("cmp-1", "t1", "midterm", "c1", "math", "s1", 38.0, "total mismatch", "PENDING", nil, nil, time.Now(), nil)
	mock.ExpectQuery("FROM complaints WHERE tenant_id = \\$1 AND status = \\$2 ORDER BY created_at DESC").
		WithArgs("t1", string(models.ComplaintStatusPending)).
		WillReturnRows(rows)

	complaints, err := repo.List(context.Background(), models.ComplaintFilter{TenantID: "t1", Status: models.ComplaintStatusPending})
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, models.ComplaintStatusPending, complaints[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryResolve(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("UPDATE complaints SET status").
		WithArgs(string(models.ComplaintStatusResolved), "re-totalled", "admin-1", sqlmock.AnyArg(), "t1", "cmp-1", string(models.ComplaintStatusPending)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Resolve(context.Background(), "t1", "cmp-1", "admin-1", "re-totalled")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryResolveAlreadyResolved(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("UPDATE complaints SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Resolve(context.Background(), "t1", "cmp-1", "admin-1", "late")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
