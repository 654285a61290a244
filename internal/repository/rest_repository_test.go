package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/libvisit-api/internal/models"
	"github.com/noah-isme/libvisit-api/pkg/postgrest"
)

func newRESTStore(t *testing.T, handler http.HandlerFunc) *VisitorRESTRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := postgrest.New(postgrest.Options{BaseURL: srv.URL, APIKey: "anon", ServiceKey: "service"})
	return NewVisitorRESTRepository(client, fixedCalendar(t))
}

func TestVisitorRESTRepositoryInsert(t *testing.T) {
	repo := newRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/visitors", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "AB123", body["roll_no"])
		assert.Equal(t, "2024-03-15", body["visit_date"])
		assert.Equal(t, "10:30:00", body["entry_time"])
		assert.Equal(t, "Friday", body["visit_day"])
		assert.Nil(t, body["exit_time"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":11,"name":"Asha","roll_no":"AB123","level":"UG","course":"BSc","year":"2","jc_year":null,"jc_stream":null,"purpose":"Study","entry_time":"10:30:00","exit_time":null,"visit_date":"2024-03-15","visit_day":"Friday"}]`))
	})

	visitor, err := repo.Insert(context.Background(), models.VisitorDraft{
		Name: "Asha", RollNo: "AB123", Level: models.LevelUG, Course: "BSc", Year: strPtr("2"), Purpose: "Study",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), visitor.ID)
	assert.Nil(t, visitor.ExitTime)
}

func TestVisitorRESTRepositoryFindActive(t *testing.T) {
	repo := newRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.AB123", q.Get("roll_no"))
		assert.Equal(t, "eq.2024-03-15", q.Get("visit_date"))
		assert.Equal(t, "is.null", q.Get("exit_time"))
		assert.Equal(t, "id.desc", q.Get("order"))
		assert.Equal(t, "1", q.Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	})

	visitor, err := repo.FindActiveByRollNo(context.Background(), "AB123", "2024-03-15")
	require.NoError(t, err)
	assert.Nil(t, visitor)
}

func TestVisitorRESTRepositoryMarkExit(t *testing.T) {
	repo := newRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		raw, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"exit_time":"10:30:00"}`, string(raw))
		if r.URL.Query().Get("id") == "eq.5" {
			_, _ = w.Write([]byte(`[{"id":5,"exit_time":"10:30:00"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	ok, err := repo.MarkExit(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkExit(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVisitorRESTRepositoryRangeSendsBothBounds(t *testing.T) {
	repo := newRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{"gte.2024-03-01", "lte.2024-03-31"}, r.URL.Query()["visit_date"])
		_, _ = w.Write([]byte(`[{"id":2,"visit_date":"2024-03-02"},{"id":1,"visit_date":"2024-03-01"}]`))
	})

	visitors, err := repo.ListByDateRange(context.Background(), "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Len(t, visitors, 2)
}

func TestVisitorRESTRepositoryPropagatesFailures(t *testing.T) {
	repo := newRESTStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := repo.ListAll(context.Background())
	var apiErr *postgrest.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestAdminRESTRepositoryFindByUsername(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admins", r.URL.Path)
		if r.URL.Query().Get("username") == "eq.librarian" {
			_, _ = w.Write([]byte(`[{"id":1,"username":"librarian","password":"secret"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	repo := NewAdminRESTRepository(postgrest.New(postgrest.Options{BaseURL: srv.URL}))

	cred, err := repo.FindByUsername(context.Background(), "librarian")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "secret", cred.Password)

	cred, err = repo.FindByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, cred)
}
