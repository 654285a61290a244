package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/libvisit-api/internal/models"
)

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordCacheOperation(true, time.Millisecond)
		m.ObserveCacheWrite(time.Millisecond)
		m.ObserveStoreOperation("insert", time.Millisecond, nil)
		m.RecordVisit("UG", sourceStudent)
		m.RecordExit()
		m.RecordLogin("success")
	})
	assert.Zero(t, m.Snapshot().RequestsTotal)
}

func TestMetricsServiceExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest("POST", "/api/v1/student/visit", 201, 5*time.Millisecond)
	m.RecordVisit("JC", sourceStudent)
	m.RecordExit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "http_requests_total")
	assert.Contains(t, body, "library_visits_recorded_total")
	assert.Contains(t, body, "go_goroutines")

	assert.Equal(t, uint64(1), m.Snapshot().RequestsTotal)
}

func TestInstrumentStoreRecordsOperations(t *testing.T) {
	cal := testCalendar(t)
	mem := newMemoryStore(cal)
	m := NewMetricsService()
	store := InstrumentStore(mem, m)
	ctx := context.Background()

	_, err := store.Insert(ctx, models.VisitorDraft{Name: "A", RollNo: "R", Level: models.LevelUG, Course: "BA", Purpose: "Study"})
	require.NoError(t, err)
	_, err = store.ListAll(ctx)
	require.NoError(t, err)

	mem.err = errors.New("boom")
	_, err = store.ListByDate(ctx, "2024-03-15")
	require.Error(t, err)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.StoreQueryCount)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("list_by_date")))

	assert.Same(t, mem, InstrumentStore(mem, nil))
}
