package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aegis-hq/minerva/pkg/config"
	"aegis-hq/minerva/pkg/harmonize"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/risk"
	"aegis-hq/minerva/pkg/rules"
	"aegis-hq/minerva/pkg/server/handlers"
	"aegis-hq/minerva/pkg/telemetry/health"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.Default()
	registry, err := rules.NewWithDefaults(logger)
	if err != nil {
		t.Fatalf("failed to build registry: %v", err)
	}

	store := history.NewMemoryStore()
	h := handlers.New(
		registry,
		risk.NewScorer(store, nil, logger),
		harmonize.New(logger),
		store,
		nil,
		nil,
		health.New(time.Second),
		logger,
	)

	cfg := config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		IdleTimeout:     30 * time.Second,
		ShutdownTimeout: time.Second,
		RequestTimeout:  5 * time.Second,
		MaxHeaderBytes:  1 << 20,
	}

	return NewServer(cfg, h, nil, "/metrics", logger)
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)
	router := srv.setupRoutes()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "health",
			method:     http.MethodGet,
			path:       "/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "ready",
			method:     http.MethodGet,
			path:       "/ready",
			wantStatus: http.StatusOK,
		},
		{
			name:       "evaluate",
			method:     http.MethodPost,
			path:       "/v1/decisions/evaluate",
			body:       `{"enterpriseId": "ent-1", "input": {"prompt": "hello"}}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "risk",
			method:     http.MethodPost,
			path:       "/v1/decisions/risk",
			body:       `{"atoms": []}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "harmonize",
			method:     http.MethodPost,
			path:       "/v1/decisions/harmonize",
			body:       `{"rulesA": [], "rulesB": [], "strategy": "merge"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "evaluate rejects GET",
			method:     http.MethodGet,
			path:       "/v1/decisions/evaluate",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown path",
			method:     http.MethodGet,
			path:       "/v1/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRequestIDAssigned(t *testing.T) {
	srv := newTestServer(t)
	router := srv.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID header")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	srv := newTestServer(t)
	router := srv.setupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-abc-123" {
		t.Errorf("expected caller request ID to be preserved, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	router := srv.setupRoutes()

	req := httptest.NewRequest(http.MethodOptions, "/v1/decisions/evaluate", nil)
	req.Header.Set("Origin", "https://console.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS headers on preflight response")
	}
}

func TestShutdownBeforeStartIsNoOp(t *testing.T) {
	srv := newTestServer(t)

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("expected nil shutting down a stopped server, got %v", err)
	}
}
