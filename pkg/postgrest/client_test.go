package postgrest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID     int64  `json:"id"`
	RollNo string `json:"roll_no"`
}

func TestGetSendsFiltersAndKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/visitors", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, []string{"eq.AB1"}, q["roll_no"])
		assert.Equal(t, []string{"is.null"}, q["exit_time"])
		assert.Equal(t, []string{"gte.2024-01-01", "lte.2024-01-31"}, q["visit_date"])
		assert.Equal(t, "id.desc", q.Get("order"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Prefer"))
		_, _ = w.Write([]byte(`[{"id":7,"roll_no":"AB1"}]`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/", APIKey: "anon", ServiceKey: "service"})
	var rows []row
	err := c.From("visitors").
		Eq("roll_no", "AB1").
		IsNull("exit_time").
		Gte("visit_date", "2024-01-01").
		Lte("visit_date", "2024-01-31").
		Order("id", true).
		Limit(1).
		Get(context.Background(), &rows)

	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 7, RollNo: "AB1"}}, rows)
}

func TestInsertRequestsRepresentation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var in map[string]string
		assert.NoError(t, json.Unmarshal(body, &in))
		assert.Equal(t, "AB1", in["roll_no"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":1,"roll_no":"AB1"}]`))
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL, ServiceKey: "service"})
	var rows []row
	require.NoError(t, c.From("visitors").Insert(context.Background(), map[string]string{"roll_no": "AB1"}, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].ID)
}

func TestErrorReplyDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"PGRST100","message":"failed to parse filter"}`))
	}))
	defer srv.Close()

	err := New(Options{BaseURL: srv.URL}).From("visitors").Delete(context.Background(), nil)
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "PGRST100", apiErr.Code)
}

func TestPingFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	assert.Error(t, New(Options{BaseURL: srv.URL}).Ping(context.Background()))
}

func TestUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var rows []row
	err := New(Options{BaseURL: url}).From("visitors").Get(context.Background(), &rows)
	assert.Error(t, err)
}
