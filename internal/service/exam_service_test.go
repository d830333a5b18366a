package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunexa/assessment-api/internal/models"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

func newExamFixture(approved bool) (*ExamService, *fakeExams, *fakeAudit) {
	exams := &fakeExams{exams: map[string]*models.Exam{
		"midterm": {ID: "midterm", TenantID: "t1", Name: "Midterm", IsApproved: approved},
	}}
	audit := &fakeAudit{}
	return NewExamService(exams, audit, nil), exams, audit
}

func TestExamServiceGet(t *testing.T) {
	svc, _, _ := newExamFixture(false)

	exam, err := svc.Get(context.Background(), "t1", "midterm")
	require.NoError(t, err)
	assert.Equal(t, "Midterm", exam.Name)

	_, err = svc.Get(context.Background(), "t1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExamServiceApprove(t *testing.T) {
	svc, exams, audit := newExamFixture(false)

	exam, err := svc.Approve(context.Background(), "t1", "midterm", "admin-1")
	require.NoError(t, err)
	assert.True(t, exam.IsApproved)
	assert.True(t, exams.exams["midterm"].IsApproved)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionExamApprove, audit.logs[0].Action)
}

func TestExamServiceApproveIsIdempotent(t *testing.T) {
	svc, _, audit := newExamFixture(true)

	exam, err := svc.Approve(context.Background(), "t1", "midterm", "admin-1")
	require.NoError(t, err)
	assert.True(t, exam.IsApproved)

	// the gate only moves once, so a repeat approval writes no audit entry
	assert.Empty(t, audit.logs)
}

func TestExamServiceApproveNotFound(t *testing.T) {
	svc, _, _ := newExamFixture(false)

	_, err := svc.Approve(context.Background(), "t1", "missing", "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
