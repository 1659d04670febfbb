package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagesmith/pagesmith/internal/log"
)

func TestLiveness(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(nil, log.NewNop()).RegisterRoutes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestReadiness_NilPool(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(nil, log.NewNop()).RegisterRoutes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
