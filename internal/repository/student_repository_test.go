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

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "full_name", "class_id", "section", "active", "created_at", "updated_at"}).
		AddRow("s1", "t1", "Asha", "c1", "A", true, time.Now(), time.Now()).
		AddRow("s2", "t1", "Bo", "c1", "A", true, time.Now(), time.Now())
}

func TestStudentRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students\\s+WHERE tenant_id = \\$1 AND class_id = \\$2 AND active = TRUE\\s+ORDER BY created_at, id").
		WithArgs("t1", "c1").
		WillReturnRows(studentRows())

	students, err := repo.ListByClass(context.Background(), "t1", "c1")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Asha", students[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE tenant_id = $1 AND id IN ($2,$3)")).
		WithArgs("t1", "s1", "s2").
		WillReturnRows(studentRows())

	found, err := repo.FindByIDs(context.Background(), "t1", []string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Bo", found["s2"].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDsEmpty(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	found, err := repo.FindByIDs(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryReassignClassSkipsAlreadyMoved(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	// s2 already sits in the target class, so only one row changes
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET class_id = $1, section = $2, updated_at = $3")).
		WithArgs("c2", "A", sqlmock.AnyArg(), "t1", "s1", "s2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := repo.ReassignClass(context.Background(), "t1", []string{"s1", "s2"}, "c2", "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
