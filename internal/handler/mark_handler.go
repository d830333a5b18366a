package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/service"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
	"github.com/edunexa/assessment-api/pkg/response"
)

// MarkHandler exposes mark entry endpoints.
type MarkHandler struct {
	marks *service.MarkService
}

// NewMarkHandler constructs handler.
func NewMarkHandler(marks *service.MarkService) *MarkHandler {
	return &MarkHandler{marks: marks}
}

// List godoc
// @Summary List mark entries
// @Tags Marks
// @Produce json
// @Param examId query string false "Filter by exam"
// @Param classId query string false "Filter by class"
// @Param subjectId query string false "Filter by subject"
// @Param studentId query string false "Filter by student"
// @Success 200 {object} response.Envelope
// @Router /marks [get]
func (h *MarkHandler) List(c *gin.Context) {
	filter := models.MarkFilter{
		TenantID:  tenantFromContext(c),
		ExamID:    c.Query("examId"),
		ClassID:   c.Query("classId"),
		SubjectID: c.Query("subjectId"),
		StudentID: c.Query("studentId"),
	}
	marks, err := h.marks.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// Upsert godoc
// @Summary Record or correct a single mark
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.UpsertMarkRequest true "Mark payload"
// @Success 200 {object} response.Envelope
// @Router /marks [post]
func (h *MarkHandler) Upsert(c *gin.Context) {
	var req service.UpsertMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.marks.Upsert(c.Request.Context(), tenantFromContext(c), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// Bulk godoc
// @Summary Save a batch of marks for one exam and class
// @Tags Marks
// @Accept json
// @Produce json
// @Param payload body service.BulkMarksRequest true "Bulk payload"
// @Success 200 {object} response.Envelope
// @Router /marks/bulk [post]
func (h *MarkHandler) Bulk(c *gin.Context) {
	var req service.BulkMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.marks.BulkUpsert(c.Request.Context(), tenantFromContext(c), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
