package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outlethr/internal/domain/payroll"
	"outlethr/internal/platform/config"
	"outlethr/internal/platform/metrics"
)

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error {
	return p.err
}

type emptyComputer struct{}

func (emptyComputer) Compute(_ context.Context, month payroll.Month, settings payroll.Settings) (payroll.Result, error) {
	return payroll.Compute(payroll.Inputs{Month: month}, settings)
}

func (emptyComputer) ComputeInputs(inputs payroll.Inputs, settings payroll.Settings) (payroll.Result, error) {
	return payroll.Compute(inputs, settings)
}

func testConfig() config.Config {
	return config.Config{
		Environment:        "production",
		MaxBodyBytes:       4096,
		CORSAllowedOrigins: []string{"https://hr.example.com"},
		MetricsEnabled:     true,
		RateLimitPerMinute: 2,
		Payroll:            payroll.DefaultSettings(),
	}
}

func testRouter(db Pinger, collector *metrics.Collector) http.Handler {
	return NewRouter(Deps{
		Config:  testConfig(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		DB:      db,
		Metrics: collector,
		Payroll: emptyComputer{},
	})
}

func TestHealthAndReadiness(t *testing.T) {
	router := testRouter(pinger{}, metrics.New())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := testRouter(pinger{err: errors.New("down")}, nil)
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPayrollRouteMountedUnderAPI(t *testing.T) {
	collector := metrics.New()
	router := testRouter(pinger{}, collector)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payroll/2025-08", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Summary payroll.Summary `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "Ogos 2025", env.Data.Summary.Label)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requestsTotal":1`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics/prometheus", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "outlethr_http_requests_total")
}

func TestAPIRateLimited(t *testing.T) {
	router := testRouter(pinger{}, metrics.New())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/2025-08", nil)
		req.RemoteAddr = "203.0.113.5:1000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestAPIRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	router := testRouter(pinger{}, metrics.New())

	codes := make([]int, 0, 3)
	for _, fwd := range []string{"198.51.100.1", "198.51.100.2", "198.51.100.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/2025-08", nil)
		req.RemoteAddr = "203.0.113.6:1000"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSPreflight(t *testing.T) {
	router := testRouter(pinger{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payroll/compute", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://hr.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunRoutesDisabledWithoutQueue(t *testing.T) {
	router := testRouter(pinger{}, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payroll/runs", nil))
	// Falls through to the month route, which rejects "runs" as a month.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
