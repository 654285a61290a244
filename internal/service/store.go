package service

import (
	"context"
	"time"

	"github.com/noah-isme/libvisit-api/internal/models"
)

// VisitorStore persists visitor records. Lookups return nil, nil when nothing matches.
type VisitorStore interface {
	Insert(ctx context.Context, draft models.VisitorDraft) (*models.Visitor, error)
	FindActiveByRollNo(ctx context.Context, rollNo, date string) (*models.Visitor, error)
	FindLatestByRollNo(ctx context.Context, rollNo string) (*models.Visitor, error)
	MarkExit(ctx context.Context, id int64) (bool, error)
	ListAll(ctx context.Context) ([]models.Visitor, error)
	ListByDate(ctx context.Context, date string) ([]models.Visitor, error)
	ListByDateRange(ctx context.Context, start, end string) ([]models.Visitor, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Pinger is implemented by stores that can report backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InstrumentStore times every store call into metrics. A nil metrics service returns store unchanged.
func InstrumentStore(store VisitorStore, metrics *MetricsService) VisitorStore {
	if metrics == nil {
		return store
	}
	return &instrumentedStore{next: store, metrics: metrics}
}

type instrumentedStore struct {
	next    VisitorStore
	metrics *MetricsService
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	s.metrics.ObserveStoreOperation(op, time.Since(start), err)
}

func (s *instrumentedStore) Insert(ctx context.Context, draft models.VisitorDraft) (*models.Visitor, error) {
	start := time.Now()
	v, err := s.next.Insert(ctx, draft)
	s.observe("insert", start, err)
	return v, err
}

func (s *instrumentedStore) FindActiveByRollNo(ctx context.Context, rollNo, date string) (*models.Visitor, error) {
	start := time.Now()
	v, err := s.next.FindActiveByRollNo(ctx, rollNo, date)
	s.observe("find_active", start, err)
	return v, err
}

func (s *instrumentedStore) FindLatestByRollNo(ctx context.Context, rollNo string) (*models.Visitor, error) {
	start := time.Now()
	v, err := s.next.FindLatestByRollNo(ctx, rollNo)
	s.observe("find_latest", start, err)
	return v, err
}

func (s *instrumentedStore) MarkExit(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	ok, err := s.next.MarkExit(ctx, id)
	s.observe("mark_exit", start, err)
	return ok, err
}

func (s *instrumentedStore) ListAll(ctx context.Context) ([]models.Visitor, error) {
	start := time.Now()
	v, err := s.next.ListAll(ctx)
	s.observe("list_all", start, err)
	return v, err
}

func (s *instrumentedStore) ListByDate(ctx context.Context, date string) ([]models.Visitor, error) {
	start := time.Now()
	v, err := s.next.ListByDate(ctx, date)
	s.observe("list_by_date", start, err)
	return v, err
}

func (s *instrumentedStore) ListByDateRange(ctx context.Context, start, end string) ([]models.Visitor, error) {
	began := time.Now()
	v, err := s.next.ListByDateRange(ctx, start, end)
	s.observe("list_by_range", began, err)
	return v, err
}

func (s *instrumentedStore) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	ok, err := s.next.Delete(ctx, id)
	s.observe("delete", start, err)
	return ok, err
}

// Ping forwards to the wrapped store when it supports it.
func (s *instrumentedStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
