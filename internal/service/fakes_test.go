package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/clock"
	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

// memoryStore is an in-process VisitorStore stamping records from a calendar.
type memoryStore struct {
	mu       sync.Mutex
	calendar *clock.Calendar
	nextID   int64
	rows     map[int64]models.Visitor
	err      error
	inserts  int
}

func newMemoryStore(cal *clock.Calendar) *memoryStore {
	return &memoryStore{calendar: cal, rows: map[int64]models.Visitor{}}
}

func (m *memoryStore) Insert(ctx context.Context, draft models.VisitorDraft) (*models.Visitor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	m.inserts++
	v := models.Visitor{
		ID: m.nextID, Name: draft.Name, RollNo: draft.RollNo, Level: draft.Level, Course: draft.Course,
		Year: draft.Year, JcYear: draft.JcYear, JcStream: draft.JcStream, Purpose: draft.Purpose,
	}
	if draft.Stamp != nil {
		v.VisitDate, v.EntryTime, v.ExitTime = draft.Stamp.VisitDate, draft.Stamp.EntryTime, draft.Stamp.ExitTime
		v.VisitDay, _ = clock.WeekdayOf(v.VisitDate)
	} else {
		st := m.calendar.Stamp()
		v.VisitDate, v.EntryTime, v.VisitDay = st.Date, st.Time, st.Weekday
	}
	m.rows[v.ID] = v
	return &v, nil
}

func (m *memoryStore) FindActiveByRollNo(ctx context.Context, rollNo, date string) (*models.Visitor, error) {
	for _, v := range m.sorted() {
		if v.RollNo == rollNo && v.VisitDate == date && v.ExitTime == nil {
			return &v, m.err
		}
	}
	return nil, m.err
}

func (m *memoryStore) FindLatestByRollNo(ctx context.Context, rollNo string) (*models.Visitor, error) {
	for _, v := range m.sorted() {
		if v.RollNo == rollNo {
			return &v, m.err
		}
	}
	return nil, m.err
}

func (m *memoryStore) MarkExit(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	v, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	exit := m.calendar.TimeOfDay()
	v.ExitTime = &exit
	m.rows[id] = v
	return true, nil
}

func (m *memoryStore) ListAll(ctx context.Context) ([]models.Visitor, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(), nil
}

func (m *memoryStore) ListByDate(ctx context.Context, date string) ([]models.Visitor, error) {
	return m.ListByDateRange(ctx, date, date)
}

func (m *memoryStore) ListByDateRange(ctx context.Context, start, end string) ([]models.Visitor, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Visitor{}
	for _, v := range m.sorted() {
		if v.VisitDate >= start && v.VisitDate <= end {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *memoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memoryStore) sorted() []models.Visitor {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Visitor, 0, len(m.rows))
	for _, v := range m.rows {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// testCalendar reads 2024-03-15 10:30:00 IST.
func testCalendar(t *testing.T) *clock.Calendar {
	t.Helper()
	return clock.MustCalendar(clock.Fixed(time.Date(2024, 3, 15, 5, 0, 0, 0, time.UTC)), "Asia/Kolkata")
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}
