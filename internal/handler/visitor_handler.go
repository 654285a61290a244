package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/libvisit-api/internal/middleware"
	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/internal/service"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

// VisitorHandler serves the admin visitor management endpoints.
type VisitorHandler struct {
	visitors *service.VisitorService
}

// NewVisitorHandler constructs a visitor handler.
func NewVisitorHandler(visitors *service.VisitorService) *VisitorHandler {
	return &VisitorHandler{visitors: visitors}
}

// List godoc
// @Summary List visitors
// @Description Lists visits filtered by level and a single date or a date range
// @Tags Admin Visitors
// @Produce json
// @Param level query string false "JC, UG, PG or all"
// @Param date query string false "YYYY-MM-DD"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param page query int false "1-based page; omit for the full list"
// @Param page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} response.Envelope
// @Router /admin/visitors [get]
func (h *VisitorHandler) List(c *gin.Context) {
	var filter models.VisitorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	visitors, err := h.visitors.ListVisitors(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, pagination := paginate(visitors, filter.Page, filter.PageSize)
	middleware.SetMeta(c, "count", len(page))
	response.JSON(c, http.StatusOK, page, pagination, middleware.ExtractMeta(c))
}

// Today godoc
// @Summary Today's visitors
// @Tags Admin Visitors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/visitors/today [get]
func (h *VisitorHandler) Today(c *gin.Context) {
	visitors, err := h.visitors.ListToday(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visitors, nil, map[string]interface{}{"count": len(visitors)})
}

// Create godoc
// @Summary Add a visit manually
// @Tags Admin Visitors
// @Accept json
// @Produce json
// @Param payload body models.AdminVisitRequest true "Visit with explicit timing"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/visitors [post]
func (h *VisitorHandler) Create(c *gin.Context) {
	var req models.AdminVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid visit payload"))
		return
	}
	visitor, err := h.visitors.AdminAddVisitor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, visitor)
}

// Bulk godoc
// @Summary Bulk visitor action
// @Tags Admin Visitors
// @Accept json
// @Produce json
// @Param payload body models.BulkActionRequest true "Bulk action"
// @Success 200 {object} response.Envelope
// @Router /admin/visitors/bulk [post]
func (h *VisitorHandler) Bulk(c *gin.Context) {
	var req models.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid bulk payload"))
		return
	}
	result, err := h.visitors.BulkAction(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
