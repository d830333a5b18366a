package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/repository"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
)

type fakeMarkStore struct {
	marks       []models.Mark
	bulkCalls   int
	upsertCalls int
}

func (f *fakeMarkStore) List(ctx context.Context, filter models.MarkFilter) ([]models.Mark, error) {
	var out []models.Mark
	for _, m := range f.marks {
		if m.TenantID == filter.TenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMarkStore) Upsert(ctx context.Context, mark *models.Mark) error {
	f.upsertCalls++
	f.marks = append(f.marks, *mark)
	return nil
}

func (f *fakeMarkStore) BulkUpsert(ctx context.Context, marks []models.Mark) error {
	f.bulkCalls++
	f.marks = append(f.marks, marks...)
	return nil
}

type markFixture struct {
	svc    *MarkService
	store  *fakeMarkStore
	exams  *fakeExams
	locker *fakeLocker
	cache  *fakeCache
	audit  *fakeAudit
}

func newMarkFixture(approved bool) *markFixture {
	store := &fakeMarkStore{}
	exams := &fakeExams{exams: map[string]*models.Exam{
		"midterm": {ID: "midterm", TenantID: "t1", Name: "Midterm", IsApproved: approved},
	}}
	locker := &fakeLocker{}
	cache := &fakeCache{data: map[string][]byte{}}
	audit := &fakeAudit{}
	results := newTestResultService(nil, nil, cache)

	svc := NewMarkService(store, exams, locker, results, audit, 3, nil, nil)
	return &markFixture{svc: svc, store: store, exams: exams, locker: locker, cache: cache, audit: audit}
}

func validUpsert() UpsertMarkRequest {
	return UpsertMarkRequest{
		ExamID: "midterm", ClassID: "c1", SubjectID: "math", StudentID: "s1",
		MarksObtained: 42, MaxMarks: 50,
	}
}

func TestMarkServiceUpsert(t *testing.T) {
	fx := newMarkFixture(false)
	fx.cache.data[repository.ResultKey("t1", "midterm", "c1")] = []byte(`[]`)

	mark, err := fx.svc.Upsert(context.Background(), "t1", validUpsert(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 42.0, mark.MarksObtained)
	assert.Equal(t, 1, fx.store.upsertCalls)

	// a write drops the cached result sheet for that exam/class
	assert.NotContains(t, fx.cache.data, repository.ResultKey("t1", "midterm", "c1"))
	require.Len(t, fx.audit.logs, 1)
	assert.Equal(t, models.AuditActionMarkWrite, fx.audit.logs[0].Action)
}

func TestMarkServiceUpsertRejectsOutOfRange(t *testing.T) {
	fx := newMarkFixture(false)
	req := validUpsert()
	req.MarksObtained = 110
	req.MaxMarks = 100

	_, err := fx.svc.Upsert(context.Background(), "t1", req, "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDataIntegrity.Code, appErrors.FromError(err).Code)
	assert.Zero(t, fx.store.upsertCalls)
}

func TestMarkServiceUpsertLockedAfterApproval(t *testing.T) {
	fx := newMarkFixture(true)

	_, err := fx.svc.Upsert(context.Background(), "t1", validUpsert(), "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExamApproved.Code, appErrors.FromError(err).Code)
	assert.Zero(t, fx.store.upsertCalls)
}

func TestMarkServiceUpsertExamNotFound(t *testing.T) {
	fx := newMarkFixture(false)
	req := validUpsert()
	req.ExamID = "missing"

	_, err := fx.svc.Upsert(context.Background(), "t1", req, "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceBulkUpsert(t *testing.T) {
	fx := newMarkFixture(false)

	result, err := fx.svc.BulkUpsert(context.Background(), "t1", BulkMarksRequest{
		ExamID: "midterm", ClassID: "c1",
		Marks: []BulkMarkItem{
			{SubjectID: "math", StudentID: "s1", MarksObtained: 47, MaxMarks: 50},
			{SubjectID: "math", StudentID: "s2", MarksObtained: 30, MaxMarks: 50},
		},
	}, "teacher-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.SavedCount)
	assert.Equal(t, 1, fx.store.bulkCalls)
	assert.Equal(t, 1, fx.locker.calls)
	require.Len(t, fx.audit.logs, 1)
}

func TestMarkServiceBulkRejectsWholeBatch(t *testing.T) {
	fx := newMarkFixture(false)

	_, err := fx.svc.BulkUpsert(context.Background(), "t1", BulkMarksRequest{
		ExamID: "midterm", ClassID: "c1",
		Marks: []BulkMarkItem{
			{SubjectID: "math", StudentID: "s1", MarksObtained: 47, MaxMarks: 50},
			{SubjectID: "math", StudentID: "s2", MarksObtained: 110, MaxMarks: 100},
		},
	}, "teacher-1")
	require.Error(t, err)

	// one bad entry rejects everything before the store is touched
	assert.Equal(t, appErrors.ErrDataIntegrity.Code, appErrors.FromError(err).Code)
	assert.Zero(t, fx.store.bulkCalls)
	assert.Empty(t, fx.store.marks)
}

func TestMarkServiceBulkBatchLimit(t *testing.T) {
	fx := newMarkFixture(false)

	items := make([]BulkMarkItem, 4)
	for i := range items {
		items[i] = BulkMarkItem{SubjectID: "math", StudentID: "s1", MarksObtained: 10, MaxMarks: 50}
	}
	_, err := fx.svc.BulkUpsert(context.Background(), "t1", BulkMarksRequest{ExamID: "midterm", ClassID: "c1", Marks: items}, "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMarkServiceBulkClassLocked(t *testing.T) {
	fx := newMarkFixture(false)
	fx.locker.locked = true

	_, err := fx.svc.BulkUpsert(context.Background(), "t1", BulkMarksRequest{
		ExamID: "midterm", ClassID: "c1",
		Marks: []BulkMarkItem{{SubjectID: "math", StudentID: "s1", MarksObtained: 10, MaxMarks: 50}},
	}, "teacher-1")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrClassLocked.Code, appErr.Code)
	assert.True(t, appErr.Retryable)
	assert.Zero(t, fx.store.bulkCalls)
}
