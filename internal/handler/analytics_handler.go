package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/libvisit-api/internal/dto"
	"github.com/noah-isme/libvisit-api/internal/middleware"
	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/internal/service"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

// AnalyticsHandler exposes dashboard-ready analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Visitors godoc
// @Summary Visitor analytics
// @Description Chart-ready statistics for a date range; missing bounds default to today
// @Tags Admin Analytics
// @Produce json
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param include_visitors query bool false "Embed the raw visit records"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/analytics [get]
func (h *AnalyticsHandler) Visitors(c *gin.Context) {
	summary, cacheHit, err := h.analytics.Range(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var visitors []models.Visitor
	if include, _ := strconv.ParseBool(c.Query("include_visitors")); include {
		visitors, err = h.analytics.Visitors(c.Request.Context(), summary.Range)
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, dto.NewAnalyticsDashboard(summary, visitors), nil, middleware.ExtractMeta(c))
}
