package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/export"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

var importRequiredColumns = []string{"name", "roll_no", "level", "purpose"}

// ImportService loads visits from CSV or XLSX uploads. Rows need name, roll_no, level
// and purpose; there is no already-inside check.
type ImportService struct {
	visitors *VisitorService
	logger   *zap.Logger
}

// NewImportService constructs an import service.
func NewImportService(visitors *VisitorService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{visitors: visitors, logger: logger}
}

// Import parses the upload named filename and inserts every valid row.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader) (*models.ImportResult, error) {
	table, err := readUpload(filename, r)
	if err != nil {
		return nil, err
	}
	if missing := table.MissingColumns(importRequiredColumns...); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required columns: "+strings.Join(missing, ", "))
	}

	result := &models.ImportResult{Errors: []string{}}
	for i, row := range table.Rows {
		line := i + 2 // header is line 1
		draft, err := s.draft(rowToImport(row))
		if err != nil {
			s.reject(result, line, appErrors.FromError(err).Message)
			continue
		}
		if _, err := s.visitors.insert(ctx, draft, sourceImport); err != nil {
			s.logger.Error("import aborted", zap.Int("line", line), zap.Int("imported", result.Imported), zap.Error(err))
			return nil, appErrors.Persistence(err, fmt.Sprintf("import stopped at line %d after %d rows", line, result.Imported))
		}
		result.Imported++
	}

	s.logger.Info("visitors imported",
		zap.String("file", filename),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (s *ImportService) reject(result *models.ImportResult, line int, msg string) {
	result.Skipped++
	if len(result.Errors) < models.MaxImportErrors {
		result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", line, msg))
	}
}

func readUpload(filename string, r io.Reader) (export.Table, error) {
	var (
		table export.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		table, err = export.ReadCSV(r)
	case ".xlsx", ".xlsm":
		table, err = export.ReadXLSX(r)
	default:
		return export.Table{}, appErrors.Clone(appErrors.ErrValidation, "unsupported file type, upload .csv or .xlsx")
	}
	if err != nil {
		msg := "could not read uploaded file"
		if errors.Is(err, export.ErrEmptyTable) {
			msg = "uploaded file is empty"
		}
		return export.Table{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
	}
	return table, nil
}

func rowToImport(row map[string]string) models.ImportRow {
	return models.ImportRow{
		Name:     strings.TrimSpace(row["name"]),
		RollNo:   normalizeRollNo(row["roll_no"]),
		Level:    strings.ToUpper(strings.TrimSpace(row["level"])),
		Course:   strings.TrimSpace(row["course"]),
		Year:     strings.TrimSpace(row["year"]),
		JcYear:   strings.TrimSpace(row["jc_year"]),
		JcStream: strings.TrimSpace(row["jc_stream"]),
		Purpose:  strings.TrimSpace(row["purpose"]),
	}
}

func (s *ImportService) draft(row models.ImportRow) (models.VisitorDraft, error) {
	if row.Purpose == "" {
		row.Purpose = models.DefaultPurpose
	}
	if err := s.visitors.validator.Struct(row); err != nil {
		return models.VisitorDraft{}, validationError(err, "invalid import row")
	}
	if row.Course == "" {
		row.Course = models.UnspecifiedCourse
	}

	level, _ := models.ParseLevel(row.Level)
	draft := models.VisitorDraft{
		Name:    row.Name,
		RollNo:  row.RollNo,
		Level:   level,
		Course:  row.Course,
		Purpose: row.Purpose,
	}
	if level == models.LevelJC {
		draft.JcYear = optional(row.JcYear)
		draft.JcStream = optional(row.JcStream)
	} else {
		draft.Year = optional(row.Year)
	}
	return draft, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
