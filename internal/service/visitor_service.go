package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/cache"
	"github.com/noah-isme/libvisit-api/pkg/clock"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

// Sources label where a visit came from in metrics and logs.
const (
	sourceStudent = "student"
	sourceAdmin   = "admin"
	sourceImport  = "import"
)

// VisitorService owns the visit lifecycle: entry, exit, status and admin maintenance.
type VisitorService struct {
	store     VisitorStore
	calendar  *clock.Calendar
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVisitorService constructs the visitor service. cache and metrics may be nil.
func NewVisitorService(store VisitorStore, calendar *clock.Calendar, cacheSvc *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *VisitorService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitorService{store: store, calendar: calendar, cache: cacheSvc, metrics: metrics, validator: validate, logger: logger}
}

// RecordVisit validates, normalises and stores a student entry. A student already
// inside today gets ALREADY_INSIDE; the check is not atomic with the insert.
func (s *VisitorService) RecordVisit(ctx context.Context, req models.VisitRequest) (*models.Visitor, error) {
	draft, err := s.buildDraft(req)
	if err != nil {
		return nil, err
	}

	active, err := s.store.FindActiveByRollNo(ctx, draft.RollNo, s.calendar.Today())
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check visitor status")
	}
	if active != nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyInside, fmt.Sprintf("%s is already inside the library", draft.RollNo))
	}

	return s.insert(ctx, draft, sourceStudent)
}

// RecordExit marks the visit with id as exited.
func (s *VisitorService) RecordExit(ctx context.Context, id int64) error {
	if id <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "visitor id must be positive")
	}
	ok, err := s.store.MarkExit(ctx, id)
	if err != nil {
		return appErrors.Persistence(err, "failed to record exit")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "visitor not found")
	}
	s.metrics.RecordExit()
	s.invalidateAnalytics(ctx)
	return nil
}

// ExitByRollNo marks today's active visit for rollNo as exited and returns it.
func (s *VisitorService) ExitByRollNo(ctx context.Context, rollNo string) (*models.Visitor, error) {
	rollNo = normalizeRollNo(rollNo)
	if rollNo == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll_no is required")
	}
	active, err := s.store.FindActiveByRollNo(ctx, rollNo, s.calendar.Today())
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check visitor status")
	}
	if active == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s is not inside the library", rollNo))
	}
	if err := s.RecordExit(ctx, active.ID); err != nil {
		return nil, err
	}
	exited := *active
	exited.ExitTime = lo.ToPtr(s.calendar.TimeOfDay())
	return &exited, nil
}

// CheckStatus classifies rollNo as ACTIVE (inside today), EXITED or NEVER_VISITED.
func (s *VisitorService) CheckStatus(ctx context.Context, rollNo string) (*models.StatusResult, error) {
	rollNo = normalizeRollNo(rollNo)
	if rollNo == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roll_no is required")
	}

	active, err := s.store.FindActiveByRollNo(ctx, rollNo, s.calendar.Today())
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check visitor status")
	}
	if active != nil {
		return &models.StatusResult{Status: models.StatusActive, Visitor: active}, nil
	}

	latest, err := s.store.FindLatestByRollNo(ctx, rollNo)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to check visitor status")
	}
	if latest == nil {
		return &models.StatusResult{Status: models.StatusNeverVisited}, nil
	}
	return &models.StatusResult{Status: models.StatusExited}, nil
}

// ListToday returns today's visits, newest first.
func (s *VisitorService) ListToday(ctx context.Context) ([]models.Visitor, error) {
	visitors, err := s.store.ListByDate(ctx, s.calendar.Today())
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list today's visitors")
	}
	return visitors, nil
}

// ListVisitors picks the narrowest store query for filter, then narrows by level.
func (s *VisitorService) ListVisitors(ctx context.Context, filter models.VisitorFilter) ([]models.Visitor, error) {
	var (
		visitors []models.Visitor
		err      error
	)
	switch {
	case filter.Date != "":
		if _, perr := clock.ParseDate(filter.Date); perr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		visitors, err = s.store.ListByDate(ctx, filter.Date)
	case filter.StartDate != "" || filter.EndDate != "":
		r, rerr := s.ResolveRange(filter.StartDate, filter.EndDate)
		if rerr != nil {
			return nil, rerr
		}
		visitors, err = s.store.ListByDateRange(ctx, r.Start, r.End)
	default:
		visitors, err = s.store.ListAll(ctx)
	}
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list visitors")
	}

	if filter.Level == "" || strings.EqualFold(filter.Level, "all") {
		return visitors, nil
	}
	level, ok := models.ParseLevel(filter.Level)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "level must be one of JC, UG, PG")
	}
	return lo.Filter(visitors, func(v models.Visitor, _ int) bool { return v.Level == level }), nil
}

// ListRange returns visits in the resolved range.
func (s *VisitorService) ListRange(ctx context.Context, r models.DateRange) ([]models.Visitor, error) {
	visitors, err := s.store.ListByDateRange(ctx, r.Start, r.End)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list visitors")
	}
	return visitors, nil
}

// ListAll returns every visit, newest first.
func (s *VisitorService) ListAll(ctx context.Context) ([]models.Visitor, error) {
	visitors, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to list visitors")
	}
	return visitors, nil
}

// AdminAddVisitor back-fills a visit with an explicit date and times. No active check is made.
func (s *VisitorService) AdminAddVisitor(ctx context.Context, req models.AdminVisitRequest) (*models.Visitor, error) {
	req.VisitDate = strings.TrimSpace(req.VisitDate)
	req.EntryTime = strings.TrimSpace(req.EntryTime)
	req.ExitTime = strings.TrimSpace(req.ExitTime)

	draft, err := s.buildDraft(req.VisitRequest)
	if err != nil {
		return nil, err
	}

	stamp, err := buildStamp(req.VisitDate, req.EntryTime, req.ExitTime)
	if err != nil {
		return nil, err
	}
	draft.Stamp = stamp
	return s.insert(ctx, draft, sourceAdmin)
}

// BulkAction applies action to each id; individual failures are collected, not fatal.
func (s *VisitorService) BulkAction(ctx context.Context, req models.BulkActionRequest) (*models.BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid bulk action")
	}

	ids := lo.Uniq(req.VisitorIDs)
	result := &models.BulkActionResult{Action: req.Action, Processed: len(ids), FailedIDs: []int64{}}
	for _, id := range ids {
		var (
			ok  bool
			err error
		)
		switch req.Action {
		case models.BulkMarkExit:
			ok, err = s.store.MarkExit(ctx, id)
		case models.BulkDelete:
			ok, err = s.store.Delete(ctx, id)
		}
		if err != nil || !ok {
			if err != nil {
				s.logger.Warn("bulk action failed", zap.String("action", string(req.Action)), zap.Int64("visitor_id", id), zap.Error(err))
			}
			result.FailedIDs = append(result.FailedIDs, id)
			continue
		}
		if req.Action == models.BulkMarkExit {
			s.metrics.RecordExit()
		}
		result.Succeeded++
	}

	if result.Succeeded > 0 {
		s.invalidateAnalytics(ctx)
	}
	s.logger.Info("bulk action applied",
		zap.String("action", string(req.Action)),
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
	)
	return result, nil
}

// ResolveRange applies the "missing bound means today" rule and checks ordering.
func (s *VisitorService) ResolveRange(start, end string) (models.DateRange, error) {
	return resolveRange(s.calendar, start, end)
}

func resolveRange(calendar *clock.Calendar, start, end string) (models.DateRange, error) {
	today := calendar.Today()
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" || start == "null" {
		start = today
	}
	if end == "" || end == "null" {
		end = today
	}
	s, err := clock.ParseDate(start)
	if err != nil {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
	}
	e, err := clock.ParseDate(end)
	if err != nil {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
	}
	if s.After(e) {
		return models.DateRange{}, appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date")
	}
	return models.DateRange{Start: start, End: end}, nil
}

func (s *VisitorService) insert(ctx context.Context, draft models.VisitorDraft, source string) (*models.Visitor, error) {
	visitor, err := s.store.Insert(ctx, draft)
	if err != nil {
		return nil, appErrors.Persistence(err, "failed to record visit")
	}
	s.metrics.RecordVisit(string(visitor.Level), source)
	s.invalidateAnalytics(ctx)
	s.logger.Info("visit recorded",
		zap.Int64("visitor_id", visitor.ID),
		zap.String("roll_no", visitor.RollNo),
		zap.String("level", string(visitor.Level)),
		zap.String("source", source),
	)
	return visitor, nil
}

// buildDraft trims every field, validates and applies level-specific normalisation.
func (s *VisitorService) buildDraft(req models.VisitRequest) (models.VisitorDraft, error) {
	req = trimVisitRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return models.VisitorDraft{}, validationError(err, "invalid visit payload")
	}
	level, _ := models.ParseLevel(req.Level)

	draft := models.VisitorDraft{
		Name:    req.Name,
		RollNo:  req.RollNo,
		Level:   level,
		Course:  req.Course,
		Purpose: req.Purpose,
	}
	if level == models.LevelJC {
		draft.JcYear = lo.ToPtr(req.JcYear)
		draft.JcStream = lo.ToPtr(req.JcStream)
		if draft.Course == "" {
			draft.Course = models.DefaultJCCourse
		}
	} else if req.Year != "" {
		draft.Year = lo.ToPtr(req.Year)
	}
	return draft, nil
}

func trimVisitRequest(req models.VisitRequest) models.VisitRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.RollNo = normalizeRollNo(req.RollNo)
	req.Level = strings.ToUpper(strings.TrimSpace(req.Level))
	req.Course = strings.TrimSpace(req.Course)
	req.Year = strings.TrimSpace(req.Year)
	req.JcYear = strings.TrimSpace(req.JcYear)
	req.JcStream = strings.TrimSpace(req.JcStream)
	req.Purpose = strings.TrimSpace(req.Purpose)
	return req
}

func normalizeRollNo(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func buildStamp(date, entry, exit string) (*models.VisitStamp, error) {
	if _, err := clock.ParseDate(date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "visit_date must be YYYY-MM-DD")
	}
	entryTime, err := clock.NormalizeTime(entry)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "entry_time must be HH:MM or HH:MM:SS")
	}
	stamp := &models.VisitStamp{VisitDate: date, EntryTime: entryTime}
	if exit != "" {
		exitTime, err := clock.NormalizeTime(exit)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "exit_time must be HH:MM or HH:MM:SS")
		}
		stamp.ExitTime = &exitTime
	}
	return stamp, nil
}

func (s *VisitorService) invalidateAnalytics(ctx context.Context) {
	s.cache.Invalidate(ctx, cache.Key(analyticsCacheNamespace, "*"))
}
