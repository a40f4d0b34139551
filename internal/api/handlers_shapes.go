// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/shapesync/shapesync/internal/gateway"
	"github.com/shapesync/shapesync/internal/logging"
	"github.com/shapesync/shapesync/internal/models"
	"github.com/shapesync/shapesync/internal/validation"
	ws "github.com/shapesync/shapesync/internal/websocket"
)

// ListShapes returns every shape, ordered by id ascending.
func (h *Handler) ListShapes(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.store.Snapshot())
}

// GetShape returns a single shape by id.
func (h *Handler) GetShape(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid shape id", err)
		return
	}

	shape, err := h.store.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Shape not found", nil)
		return
	}

	respondSuccess(w, http.StatusOK, shape)
}

// CreateShape validates and creates a shape, broadcasting the Created
// event to all attached sessions.
func (h *Handler) CreateShape(w http.ResponseWriter, r *http.Request) {
	var req models.CreateShapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	event, err := h.gateway.SubmitCreate(req)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, event.Shape)
}

// UpdateShape validates and replaces a shape's mutable fields,
// broadcasting the Updated event.
func (h *Handler) UpdateShape(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid shape id", err)
		return
	}

	var req models.UpdateShapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	event, err := h.gateway.SubmitUpdate(id, req)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, event.Shape)
}

// DeleteShape removes a shape, broadcasting the Deleted event whose
// payload is the id alone.
func (h *Handler) DeleteShape(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid shape id", err)
		return
	}

	event, err := h.gateway.SubmitDelete(id)
	if err != nil {
		h.respondMutationError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": event.ShapeID})
}

// respondMutationError maps gateway errors onto HTTP responses:
// validation failures become 400, missing ids become 404.
func (h *Handler) respondMutationError(w http.ResponseWriter, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondValidationError(w, verr)
		return
	}
	if errors.Is(err, gateway.ErrNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Shape not found", nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
}

// WebSocket upgrades the connection and attaches a subscriber session.
// The session's first message is the full snapshot; every event
// committed after the attach follows in commit order.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	session := h.gateway.Attach()
	client := ws.NewClient(h.hub, session, conn, ws.ClientConfig{
		WriteWait:      h.config.WebSocket.WriteWait,
		PongWait:       h.config.WebSocket.PongWait,
		MaxMessageSize: h.config.WebSocket.MaxMessageSize,
	})
	client.Start()
}
