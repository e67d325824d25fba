package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unisphere/unisphere-api/internal/service"
)

func TestHealthHandlerHealth(t *testing.T) {
	handler := NewHealthHandler(nil, nil)
	c, rec := newTestContext(http.MethodGet, "/health", nil)
	handler.Health(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHandlerReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	handler := NewHealthHandler(nil, map[string]ReadinessCheck{"database": ok, "redis": ok})
	c, rec := newTestContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	handler = NewHealthHandler(nil, map[string]ReadinessCheck{"database": ok, "redis": down})
	c, rec = newTestContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestHealthHandlerPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.IncOrders()
	handler := NewHealthHandler(metrics, nil)
	c, rec := newTestContext(http.MethodGet, "/metrics", nil)

	handler.Prometheus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cafeteria_orders_total 1")

	c, rec = newTestContext(http.MethodGet, "/metrics", nil)
	NewHealthHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
