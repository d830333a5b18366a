package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/service"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
	"github.com/edunexa/assessment-api/pkg/response"
)

// ResultHandler exposes aggregated result endpoints. Staff see results at any
// time; students and parents only once the exam is approved.
type ResultHandler struct {
	results *service.ResultService
	exams   *service.ExamService
}

// NewResultHandler constructs handler.
func NewResultHandler(results *service.ResultService, exams *service.ExamService) *ResultHandler {
	return &ResultHandler{results: results, exams: exams}
}

// Get godoc
// @Summary Aggregated, ranked results for an exam and class
// @Tags Results
// @Produce json
// @Param examId path string true "Exam ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /results/{examId}/{classId} [get]
func (h *ResultHandler) Get(c *gin.Context) {
	if err := h.requirePublished(c); err != nil {
		response.Error(c, err)
		return
	}
	results, err := h.results.Aggregate(c.Request.Context(), tenantFromContext(c), c.Param("examId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Matrix godoc
// @Summary Per-subject result matrix for an exam and class
// @Tags Results
// @Produce json
// @Param examId path string true "Exam ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /results/{examId}/{classId}/matrix [get]
func (h *ResultHandler) Matrix(c *gin.Context) {
	if err := h.requirePublished(c); err != nil {
		response.Error(c, err)
		return
	}
	matrix, err := h.results.SubjectMatrix(c.Request.Context(), tenantFromContext(c), c.Param("examId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matrix, nil)
}

// requirePublished gates student and parent views on exam approval.
func (h *ResultHandler) requirePublished(c *gin.Context) error {
	claims := claimsFromContext(c)
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleStudent && claims.Role != models.RoleParent {
		return nil
	}
	exam, err := h.exams.Get(c.Request.Context(), claims.TenantID, c.Param("examId"))
	if err != nil {
		return err
	}
	if !exam.IsApproved {
		return appErrors.Clone(appErrors.ErrExamNotApproved, "results are not published yet")
	}
	return nil
}
