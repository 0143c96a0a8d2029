package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/triplog/internal/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	h := middleware.NewCORSHandler([]string{"https://app.example"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_OmitsHeaderForUnknownOrigin(t *testing.T) {
	h := middleware.NewCORSHandler([]string{"https://app.example"})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// The response itself may still be 200; the browser blocks it because
	// the allow-origin header is absent.
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightAllowsPatch(t *testing.T) {
	h := middleware.NewCORSHandler([]string{"https://app.example"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/trips/t1", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, rec.Code == http.StatusNoContent || rec.Code == http.StatusOK,
		"expected 2xx for OPTIONS preflight, got %d", rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}
