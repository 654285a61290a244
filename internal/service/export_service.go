package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/export"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

var exportHeaders = []string{
	"ID", "Name", "Roll No", "Level", "Course", "Year", "JC Year", "JC Stream",
	"Purpose", "Entry Time", "Exit Time", "Visit Date", "Day",
}

// ExportService renders visitor listings as CSV, XLSX or PDF.
type ExportService struct {
	visitors *VisitorService
	logger   *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(visitors *VisitorService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{visitors: visitors, logger: logger}
}

// Export renders every visit, or the requested date range when either bound is set.
func (s *ExportService) Export(ctx context.Context, req models.ExportRequest) (*models.ExportFile, error) {
	renderer, err := export.NewRenderer(req.Format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of csv, xlsx, pdf")
	}

	title := "Library Visitors"
	var visitors []models.Visitor
	if strings.TrimSpace(req.StartDate) != "" || strings.TrimSpace(req.EndDate) != "" {
		r, err := s.visitors.ResolveRange(req.StartDate, req.EndDate)
		if err != nil {
			return nil, err
		}
		title += " " + r.Start + " to " + r.End
		visitors, err = s.visitors.ListRange(ctx, r)
		if err != nil {
			return nil, err
		}
	} else {
		visitors, err = s.visitors.ListAll(ctx)
		if err != nil {
			return nil, err
		}
	}

	body, err := renderer.Render(export.Dataset{Title: title, Headers: exportHeaders, Rows: visitorRows(visitors)})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	stamp := strings.ReplaceAll(s.visitors.calendar.Today(), "-", "")
	file := &models.ExportFile{
		Filename:    "library_visitors_" + stamp + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Body:        body,
		Rows:        len(visitors),
	}
	s.logger.Info("visitors exported", zap.String("file", file.Filename), zap.Int("rows", file.Rows))
	return file, nil
}

func visitorRows(visitors []models.Visitor) [][]string {
	rows := make([][]string, 0, len(visitors))
	for _, v := range visitors {
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.Name,
			v.RollNo,
			string(v.Level),
			v.Course,
			lo.FromPtr(v.Year),
			lo.FromPtr(v.JcYear),
			lo.FromPtr(v.JcStream),
			v.Purpose,
			v.EntryTime,
			lo.FromPtr(v.ExitTime),
			v.VisitDate,
			v.VisitDay,
		})
	}
	return rows
}
