package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edunexa/assessment-api/internal/middleware"
	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/service"
	"github.com/edunexa/assessment-api/pkg/config"
)

type markReaderMock struct {
	marks []models.Mark
}

func (m *markReaderMock) ListForExamClass(ctx context.Context, tenantID, examID, classID string) ([]models.Mark, error) {
	return m.marks, nil
}

type studentDirectoryMock struct {
	students []models.Student
}

func (m *studentDirectoryMock) FindByIDs(ctx context.Context, tenantID string, studentIDs []string) (map[string]models.Student, error) {
	out := make(map[string]models.Student)
	for _, s := range m.students {
		out[s.ID] = s
	}
	return out, nil
}

type examStoreMock struct {
	exam *models.Exam
}

func (m *examStoreMock) FindByID(ctx context.Context, tenantID, examID string) (*models.Exam, error) {
	if m.exam == nil {
		return nil, sql.ErrNoRows
	}
	return m.exam, nil
}

func (m *examStoreMock) Approve(ctx context.Context, tenantID, examID string) (int64, error) {
	return 0, nil
}

type auditMock struct{}

func (m *auditMock) CreateAuditLog(ctx context.Context, log *models.AuditLog) error { return nil }

func newResultHandlerContext(t *testing.T, approved bool, role models.UserRole) (*ResultHandler, *httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	marks := &markReaderMock{marks: []models.Mark{{
		ID: "m1", TenantID: "t1", ExamID: "midterm", ClassID: "c1",
		SubjectID: "math", StudentID: "s1", MarksObtained: 47, MaxMarks: 50,
	}}}
	students := &studentDirectoryMock{students: []models.Student{{
		ID: "s1", TenantID: "t1", FullName: "Asha", ClassID: "c1", Section: "A", Active: true,
	}}}
	scales := service.NewGradeScaleService(&scaleStoreMock{bands: fullScale()}, config.PromotionConfig{DefaultMode: "OVERALL"}, nil, zap.NewNop())
	results := service.NewResultService(marks, students, scales, nil, time.Minute, nil, zap.NewNop())
	exams := service.NewExamService(&examStoreMock{exam: &models.Exam{
		ID: "midterm", TenantID: "t1", Name: "Midterm", IsApproved: approved,
	}}, &auditMock{}, zap.NewNop())

	handler := NewResultHandler(results, exams)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", TenantID: "t1", Role: role})
	c.Params = gin.Params{{Key: "examId", Value: "midterm"}, {Key: "classId", Value: "c1"}}
	req, _ := http.NewRequest(http.MethodGet, "/results/midterm/c1", nil)
	c.Request = req
	return handler, w, c
}

func TestResultHandlerStaffSeesUnpublished(t *testing.T) {
	handler, w, c := newResultHandlerContext(t, false, models.RoleTeacher)

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "s1")
}

func TestResultHandlerStudentBlockedUntilApproval(t *testing.T) {
	handler, w, c := newResultHandlerContext(t, false, models.RoleStudent)

	handler.Get(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}

func TestResultHandlerStudentSeesPublished(t *testing.T) {
	handler, w, c := newResultHandlerContext(t, true, models.RoleStudent)

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A+")
}

func TestResultHandlerParentBlockedUntilApproval(t *testing.T) {
	handler, w, c := newResultHandlerContext(t, false, models.RoleParent)

	handler.Matrix(c)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
