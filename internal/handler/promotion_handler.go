package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/service"
	appErrors "github.com/edunexa/assessment-api/pkg/errors"
	"github.com/edunexa/assessment-api/pkg/response"
)

// PromotionHandler exposes promotion endpoints.
type PromotionHandler struct {
	promotions *service.PromotionService
}

// NewPromotionHandler constructs handler.
func NewPromotionHandler(promotions *service.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotions: promotions}
}

// Manual godoc
// @Summary Promote an explicit list of students
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body service.ManualPromotionRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Router /promotions/manual [post]
func (h *PromotionHandler) Manual(c *gin.Context) {
	var req service.ManualPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.promotions.PromoteManual(c.Request.Context(), tenantFromContext(c), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Auto godoc
// @Summary Promote a class from an approved exam's results
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body service.AutoPromotionRequest true "Promotion payload"
// @Success 200 {object} response.Envelope
// @Router /promotions/auto [post]
func (h *PromotionHandler) Auto(c *gin.Context) {
	var req service.AutoPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.promotions.PromoteAuto(c.Request.Context(), tenantFromContext(c), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GetRun godoc
// @Summary Promotion run header with its decision log
// @Tags Promotions
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /promotions/runs/{runId} [get]
func (h *PromotionHandler) GetRun(c *gin.Context) {
	run, decisions, err := h.promotions.GetRun(c.Request.Context(), tenantFromContext(c), c.Param("runId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"run": run, "decisions": decisions}, nil)
}
