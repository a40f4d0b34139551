// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package gateway is the sole entry point through which external actors
// change shape state. It binds validation and broadcast side effects to
// a commit: validate, apply to the store, and publish the resulting
// event all inside one writer lock, so no two submissions interleave
// their apply/publish steps and no session ever observes events out of
// commit order.
package gateway

import (
	"errors"
	"sync"

	"github.com/shapesync/shapesync/internal/logging"
	"github.com/shapesync/shapesync/internal/metrics"
	"github.com/shapesync/shapesync/internal/models"
	"github.com/shapesync/shapesync/internal/store"
	"github.com/shapesync/shapesync/internal/validation"
	ws "github.com/shapesync/shapesync/internal/websocket"
)

// ErrNotFound mirrors the store sentinel so callers can match without
// importing the store package.
var ErrNotFound = store.ErrNotFound

// Gateway validates and applies incoming mutations against the store,
// producing committed events that it hands to the hub for fan-out.
//
// mu is the single writer lock. Holding it across apply+publish (and
// across snapshot+register during Attach) is what makes per-session
// delivery exactly-once and gap-free: an attach can never slip between
// a store commit and the publish of its event. Nothing inside the
// critical section performs blocking I/O: the store is an in-memory map
// and Publish only enqueues to bounded per-session queues.
type Gateway struct {
	mu    sync.Mutex
	store *store.Store
	hub   *ws.Hub
}

// New creates a gateway over the given store and hub.
func New(st *store.Store, hub *ws.Hub) *Gateway {
	return &Gateway{store: st, hub: hub}
}

// SubmitCreate validates the request, inserts the shape, and publishes
// the Created event. Returns *validation.RequestValidationError for
// malformed input; validation failures mutate nothing and publish
// nothing.
func (g *Gateway) SubmitCreate(req models.CreateShapeRequest) (models.Event, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.RecordMutation(string(models.EventCreated), false)
		return models.Event{}, verr
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	shape := g.store.Create(req.Name, req.Color, req.Kind)
	event := models.NewCreatedEvent(shape)
	g.hub.Publish(event)

	metrics.RecordMutation(string(models.EventCreated), true)
	metrics.ShapesCurrent.Set(float64(g.store.Len()))
	logging.Info().Int64("shape_id", shape.ID).Str("kind", string(shape.Kind)).Msg("shape created")
	return event, nil
}

// SubmitUpdate validates the request, replaces the shape's mutable
// fields, and publishes the Updated event. Propagates ErrNotFound when
// the id is absent; failures publish nothing.
func (g *Gateway) SubmitUpdate(id int64, req models.UpdateShapeRequest) (models.Event, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.RecordMutation(string(models.EventUpdated), false)
		return models.Event{}, verr
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	shape, err := g.store.Update(id, req.Name, req.Color, req.Kind)
	if err != nil {
		metrics.RecordMutation(string(models.EventUpdated), false)
		return models.Event{}, err
	}
	event := models.NewUpdatedEvent(shape)
	g.hub.Publish(event)

	metrics.RecordMutation(string(models.EventUpdated), true)
	logging.Info().Int64("shape_id", shape.ID).Msg("shape updated")
	return event, nil
}

// SubmitDelete removes the shape and publishes the Deleted event, whose
// payload is the id alone. Propagates ErrNotFound; failures publish
// nothing.
func (g *Gateway) SubmitDelete(id int64) (models.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Delete(id); err != nil {
		metrics.RecordMutation(string(models.EventDeleted), false)
		return models.Event{}, err
	}
	event := models.NewDeletedEvent(id)
	g.hub.Publish(event)

	metrics.RecordMutation(string(models.EventDeleted), true)
	metrics.ShapesCurrent.Set(float64(g.store.Len()))
	logging.Info().Int64("shape_id", id).Msg("shape deleted")
	return event, nil
}

// Attach takes a store snapshot and registers a new subscriber session
// in one critical section with respect to submissions. The session
// therefore observes the snapshot plus every event committed afterward:
// no event appearing in the snapshot is replayed, none committed after
// it is skipped.
func (g *Gateway) Attach() *ws.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hub.Attach(g.store.Snapshot())
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var verr *validation.RequestValidationError
	return errors.As(err, &verr)
}
