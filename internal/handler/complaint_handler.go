package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/models"
	"github.com/edunexa/assessment-api/internal/service"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
	"github.com/edunexa/assessment-api/pkg/response"
)

// ComplaintHandler exposes grade dispute endpoints.
type ComplaintHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintHandler constructs handler.
func NewComplaintHandler(complaints *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

// Create godoc
// @Summary Open a complaint against a published mark
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body service.CreateComplaintRequest true "Complaint payload"
// @Success 201 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Create(c *gin.Context) {
	var req service.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	complaint, err := h.complaints.Create(c.Request.Context(), tenantFromContext(c), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, complaint)
}

// List godoc
// @Summary List complaints
// @Tags Complaints
// @Produce json
// @Param examId query string false "Filter by exam"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := models.ComplaintFilter{
		TenantID:  tenantFromContext(c),
		ExamID:    c.Query("examId"),
		StudentID: c.Query("studentId"),
		Status:    models.ComplaintStatus(c.Query("status")),
		Limit:     limit,
		Offset:    offset,
	}
	complaints, err := h.complaints.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaints, nil)
}

// Get godoc
// @Summary Complaint detail
// @Tags Complaints
// @Produce json
// @Param complaintId path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{complaintId} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	complaint, err := h.complaints.Get(c.Request.Context(), tenantFromContext(c), c.Param("complaintId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}

// Resolve godoc
// @Summary Resolve a complaint, optionally correcting the mark
// @Tags Complaints
// @Accept json
// @Produce json
// @Param complaintId path string true "Complaint ID"
// @Param payload body service.ResolveComplaintRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /complaints/{complaintId}/resolve [post]
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	var req service.ResolveComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	complaint, err := h.complaints.Resolve(c.Request.Context(), tenantFromContext(c), c.Param("complaintId"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, complaint, nil)
}
