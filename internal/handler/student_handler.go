package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/internal/service"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

// StudentHandler serves the public check-in kiosk endpoints.
type StudentHandler struct {
	visitors *service.VisitorService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(visitors *service.VisitorService) *StudentHandler {
	return &StudentHandler{visitors: visitors}
}

// RecordVisit godoc
// @Summary Record library entry
// @Description Records a student entering the library. Rejects students already inside today.
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body models.VisitRequest true "Visit payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /student/visit [post]
func (h *StudentHandler) RecordVisit(c *gin.Context) {
	var req models.VisitRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err, "invalid visit payload"))
		return
	}
	visitor, err := h.visitors.RecordVisit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, visitor)
}

// CheckStatus godoc
// @Summary Check visitor status
// @Description Reports ACTIVE, EXITED or NEVER_VISITED for a roll number
// @Tags Student
// @Produce json
// @Param roll_no path string true "Roll number"
// @Success 200 {object} response.Envelope
// @Router /student/check/{roll_no} [get]
func (h *StudentHandler) CheckStatus(c *gin.Context) {
	status, err := h.visitors.CheckStatus(c.Request.Context(), c.Param("roll_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// RecordExit godoc
// @Summary Record library exit
// @Tags Student
// @Produce json
// @Param id path int true "Visitor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/exit/{id} [put]
func (h *StudentHandler) RecordExit(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.visitors.RecordExit(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "exited": true}, nil)
}

// ExitByRollNo godoc
// @Summary Record library exit by roll number
// @Tags Student
// @Produce json
// @Param roll_no path string true "Roll number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/exit/roll/{roll_no} [put]
func (h *StudentHandler) ExitByRollNo(c *gin.Context) {
	visitor, err := h.visitors.ExitByRollNo(c.Request.Context(), c.Param("roll_no"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, visitor, nil)
}
