// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shapesync/shapesync/internal/middleware"
)

// Router assembles the HTTP routing tree around a Handler.
type Router struct {
	handler *Handler
	chiMw   *ChiMiddleware
}

// NewRouter creates a router for the given handler, deriving middleware
// settings from the handler's configuration.
func NewRouter(h *Handler) *Router {
	sec := h.config.Security
	return &Router{
		handler: h,
		chiMw: NewChiMiddlewareFromConfig(
			sec.CORSOrigins,
			sec.RateLimitReqs,
			sec.RateLimitWindow,
			sec.RateLimitDisabled,
		),
	}
}

// SetupChi builds the complete routing tree.
func (rt *Router) SetupChi() chi.Router {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.chiMw.CORS())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.chiMw.RateLimitHealth())
			r.Get("/health", rt.handler.Health)
			r.Get("/health/live", rt.handler.HealthLive)
			r.Get("/health/ready", rt.handler.HealthReady)
		})

		r.Group(func(r chi.Router) {
			r.Use(rt.chiMw.RateLimit())
			r.Use(chiMiddleware(middleware.PrometheusMetrics))

			r.Route("/shapes", func(r chi.Router) {
				r.Get("/", rt.handler.ListShapes)
				r.Post("/", rt.handler.CreateShape)
				r.Get("/{id}", rt.handler.GetShape)
				r.Put("/{id}", rt.handler.UpdateShape)
				r.Delete("/{id}", rt.handler.DeleteShape)
			})
		})

		// The websocket upgrade needs the raw http.ResponseWriter so it
		// stays outside the metrics wrapper, which hides http.Hijacker.
		r.Group(func(r chi.Router) {
			r.Use(rt.chiMw.RateLimit())
			r.Get("/ws", rt.handler.WebSocket)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// chiMiddleware adapts an http.HandlerFunc middleware to Chi's
// http.Handler middleware signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}
