package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunexa/assessment-api/internal/service"
	"github.com/edunexa/assessment-api/pkg/response"
)

// AnalyticsHandler exposes cohort analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	metrics   *service.MetricsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, metrics *service.MetricsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, metrics: metrics}
}

// Report godoc
// @Summary Subject statistics and performance distribution for an exam and class
// @Tags Analytics
// @Produce json
// @Param examId path string true "Exam ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/{examId}/{classId} [get]
func (h *AnalyticsHandler) Report(c *gin.Context) {
	report, err := h.analytics.Analyze(c.Request.Context(), tenantFromContext(c), c.Param("examId"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// System godoc
// @Summary Runtime metrics snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
