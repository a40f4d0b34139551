// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChiMiddleware_CORS(t *testing.T) {
	mw := NewChiMiddlewareFromConfig([]string{"https://app.example.com"}, 100, time.Minute, false)
	handler := mw.CORS()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Allow-Origin %q, want the configured origin", got)
	}
}

func TestChiMiddleware_CORS_Preflight(t *testing.T) {
	mw := NewChiMiddlewareFromConfig([]string{"*"}, 100, time.Minute, false)
	handler := mw.CORS()(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/shapes", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Preflight missing Allow-Origin header")
	}
}

func TestChiMiddleware_RateLimit(t *testing.T) {
	mw := NewChiMiddlewareFromConfig([]string{"*"}, 2, time.Minute, false)
	handler := mw.RateLimit()(okHandler())

	var lastStatus int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil)
		req.RemoteAddr = "203.0.113.5:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastStatus = rec.Code
	}

	if lastStatus != http.StatusTooManyRequests {
		t.Errorf("Third request status %d, want 429", lastStatus)
	}
}

func TestChiMiddleware_RateLimitDisabled(t *testing.T) {
	mw := NewChiMiddlewareFromConfig([]string{"*"}, 1, time.Minute, true)
	handler := mw.RateLimit()(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/shapes", nil)
		req.RemoteAddr = "203.0.113.5:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d status %d with limiter disabled", i, rec.Code)
		}
	}
}

func TestDefaultChiMiddlewareConfig(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()

	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Errorf("Default origins %v, want empty", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("Default rate limit %d/%s, want 100/min", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
}
