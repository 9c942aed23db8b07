package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lingvoclub/placement-backend/internal/service"
)

// AnalyticsHandler receives funnel beacons from the landing page.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// PageOpened godoc
// POST /api/analytics/page-opened
// Fire-and-forget beacon, always 204.
func (h *AnalyticsHandler) PageOpened(c *gin.Context) {
	h.analyticsService.RecordPageOpened(c.Request.Context())
	c.Status(http.StatusNoContent)
}
