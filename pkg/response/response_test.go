package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/libvisit-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestErrorRendersTypedError(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrAlreadyInside, "AB123 is already inside"))

	require.Equal(t, http.StatusConflict, w.Code)
	var env struct {
		Error appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "ALREADY_INSIDE", env.Error.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.True(t, c.IsAborted())
}

func TestErrorHidesUntypedCause(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.Len(t, c.Errors, 1)
}

func TestAttachmentSetsDisposition(t *testing.T) {
	c, w := newContext()
	Attachment(c, "library_visitors_20240102.csv", "text/csv", []byte("ID\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="library_visitors_20240102.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "ID\n", w.Body.String())
}
