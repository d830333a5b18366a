package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/service"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
	"github.com/edunexa/assessment-api/pkg/response"
)

// GradeScaleHandler exposes grade scale and promotion policy endpoints.
type GradeScaleHandler struct {
	scales *service.GradeScaleService
}

// NewGradeScaleHandler constructs handler.
func NewGradeScaleHandler(scales *service.GradeScaleService) *GradeScaleHandler {
	return &GradeScaleHandler{scales: scales}
}

// Get godoc
// @Summary Active grade scale for the tenant
// @Tags GradeScale
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-scale [get]
func (h *GradeScaleHandler) Get(c *gin.Context) {
	bands, err := h.scales.ResolveScale(c.Request.Context(), tenantFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}

// Replace godoc
// @Summary Replace the tenant's grade scale
// @Tags GradeScale
// @Accept json
// @Produce json
// @Param payload body service.ReplaceScaleRequest true "Grade scale payload"
// @Success 200 {object} response.Envelope
// @Router /grade-scale [put]
func (h *GradeScaleHandler) Replace(c *gin.Context) {
	var req service.ReplaceScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	bands, err := h.scales.ReplaceScale(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}

// Classify godoc
// @Summary Classify a percentage against the tenant's grade scale
// @Tags GradeScale
// @Produce json
// @Param percentage query number true "Percentage to classify"
// @Success 200 {object} response.Envelope
// @Router /grade-scale/classify [get]
func (h *GradeScaleHandler) Classify(c *gin.Context) {
	percentage, err := strconv.ParseFloat(c.Query("percentage"), 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "percentage must be a number"))
		return
	}
	classification, err := h.scales.Classify(c.Request.Context(), tenantFromContext(c), percentage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classification, nil)
}

// GetPolicy godoc
// @Summary Effective promotion policy for the tenant
// @Tags GradeScale
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /promotion-policy [get]
func (h *GradeScaleHandler) GetPolicy(c *gin.Context) {
	policy, err := h.scales.ResolvePolicy(c.Request.Context(), tenantFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy, nil)
}

// UpsertPolicy godoc
// @Summary Store the tenant's promotion policy
// @Tags GradeScale
// @Accept json
// @Produce json
// @Param payload body service.UpsertPromotionPolicyRequest true "Policy payload"
// @Success 200 {object} response.Envelope
// @Router /promotion-policy [put]
func (h *GradeScaleHandler) UpsertPolicy(c *gin.Context) {
	var req service.UpsertPromotionPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	policy, err := h.scales.UpsertPolicy(c.Request.Context(), tenantFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy, nil)
}
