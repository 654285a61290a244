package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) {
		*seen = Value(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestMiddlewareGeneratesUUID(t *testing.T) {
	var seen string
	r := newRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestMiddlewareReusesInboundHeader(t *testing.T) {
	var seen string
	r := newRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "upstream-1", seen)
}

func TestMiddlewareRejectsOversizedHeader(t *testing.T) {
	var seen string
	r := newRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, strings.Repeat("x", 200), seen)
	assert.Len(t, seen, 36)
}
