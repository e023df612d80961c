package statusapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"aurora-pvlogd/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleRootServesDocument(t *testing.T) {
	cache := telemetry.NewCache()
	s := New(":0", cache)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleRoot(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	parsed, err := telemetry.Unmarshal(rec.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(cache.Get()))
}

func TestHandleRootRejectsNonGet(t *testing.T) {
	s := New(":0", telemetry.NewCache())

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	s.handleRoot(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRootRejectsOtherPaths(t *testing.T) {
	s := New(":0", telemetry.NewCache())

	req := httptest.NewRequest(http.MethodGet, "/other", nil)
	rec := httptest.NewRecorder()
	s.handleRoot(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
