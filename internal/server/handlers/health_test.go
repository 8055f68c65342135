package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_Health(t *testing.T) {
	logger := setupTestLogger()
	handler := NewHealthHandler(logger, &mockPinger{}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	resp := w.Result()
	defer func() {
		err := resp.Body.Close()
		assert.NoError(t, err)
	}()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var healthResp HealthResponse
	err := json.NewDecoder(resp.Body).Decode(&healthResp)
	assert.NoError(t, err)

	assert.Equal(t, "ok", healthResp.Status)
	assert.Equal(t, "1.2.3", healthResp.Version)
}

func TestHealthHandler_Health_DatabaseDown(t *testing.T) {
	logger := setupTestLogger()
	handler := NewHealthHandler(logger, &mockPinger{err: errors.New("connection refused")}, "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()

	handler.Health(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var healthResp HealthResponse
	err := json.NewDecoder(w.Body).Decode(&healthResp)
	assert.NoError(t, err)

	assert.Equal(t, "degraded", healthResp.Status)
}
