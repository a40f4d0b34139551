// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package api

import (
	"net/http"
	"time"

	"github.com/shapesync/shapesync/internal/models"
)

// Health reports overall status plus current shape and session counts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:   "healthy",
		Version:  "1.0.0",
		Shapes:   h.store.Len(),
		Sessions: h.hub.SessionCount(),
		Uptime:   time.Since(h.startTime).Seconds(),
	}

	respondSuccess(w, http.StatusOK, health)
}

// HealthLive is the liveness probe: 200 whenever the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. The core holds no external
// dependencies, so readiness follows liveness.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}
