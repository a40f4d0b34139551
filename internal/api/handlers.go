// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package api

import (
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/shapesync/shapesync/internal/config"
	"github.com/shapesync/shapesync/internal/gateway"
	"github.com/shapesync/shapesync/internal/store"
	ws "github.com/shapesync/shapesync/internal/websocket"
)

// Handler contains the dependencies for the API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_shapes.go: shape CRUD and the websocket upgrade
//   - handlers_health.go: health endpoints
//   - helpers.go: shared response helpers
type Handler struct {
	store     *store.Store
	gateway   *gateway.Gateway
	hub       *ws.Hub
	config    *config.Config
	startTime time.Time
	upgrader  gorillaws.Upgrader
}

// NewHandler creates the API handler. Mutations go through the gateway;
// reads go straight to the store.
func NewHandler(st *store.Store, gw *gateway.Gateway, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:     st,
		gateway:   gw,
		hub:       hub,
		config:    cfg,
		startTime: time.Now(),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.Security.CORSOrigins),
		},
	}
}

// originChecker builds the upgrade origin policy from the configured
// CORS origins. A "*" entry admits all origins.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		if allowAll {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			// Non-browser clients send no Origin header.
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
