package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/service"
	"github.com/edunexa/assessment-api/pkg/response"
)

// ExamHandler exposes exam lookup and approval endpoints.
type ExamHandler struct {
	exams *service.ExamService
}

// NewExamHandler constructs handler.
func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// Get godoc
// @Summary Exam detail with class list
// @Tags Exams
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), tenantFromContext(c), c.Param("examId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// Approve godoc
// @Summary Approve an exam, publishing its results
// @Tags Exams
// @Produce json
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{examId}/approve [post]
func (h *ExamHandler) Approve(c *gin.Context) {
	exam, err := h.exams.Approve(c.Request.Context(), tenantFromContext(c), c.Param("examId"), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}
