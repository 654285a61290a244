package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/internal/service"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
	"github.com/noah-isme/libvisit-api/pkg/response"
)

const importFormField = "file"

// TransferHandler serves bulk import and export.
type TransferHandler struct {
	importer *service.ImportService
	exporter *service.ExportService
	maxBytes int64
}

// NewTransferHandler constructs a transfer handler. maxBytes bounds import uploads.
func NewTransferHandler(importer *service.ImportService, exporter *service.ExportService, maxBytes int64) *TransferHandler {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &TransferHandler{importer: importer, exporter: exporter, maxBytes: maxBytes}
}

// Import godoc
// @Summary Import visitors
// @Description Upload a CSV or XLSX file with name, roll_no, level and purpose columns
// @Tags Admin Transfer
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /admin/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	header, err := c.FormFile(importFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, bindError(err, "a file upload is required"))
		return
	}
	if header.Size > h.maxBytes {
		response.Error(c, appErrors.ErrPayloadTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, bindError(err, "could not open uploaded file"))
		return
	}
	defer file.Close()

	result, err := h.importer.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export visitors
// @Description Download visits as csv, xlsx or pdf; a date range narrows the export
// @Tags Admin Transfer
// @Produce octet-stream
// @Param format query string false "csv, xlsx or pdf"
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/export [get]
func (h *TransferHandler) Export(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, bindError(err, "invalid query parameters"))
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
