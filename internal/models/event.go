// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package models

// EventKind identifies the mutation a committed Event records.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

// Event is an immutable record of one committed mutation. Created and
// Updated events carry the full post-mutation shape; Deleted events
// carry only the id. Events are totally ordered by commit order under
// the gateway's writer lock.
type Event struct {
	Kind    EventKind
	Shape   *Shape
	ShapeID int64
}

// NewCreatedEvent wraps a freshly created shape.
func NewCreatedEvent(shape Shape) Event {
	return Event{Kind: EventCreated, Shape: &shape, ShapeID: shape.ID}
}

// NewUpdatedEvent wraps the post-update shape.
func NewUpdatedEvent(shape Shape) Event {
	return Event{Kind: EventUpdated, Shape: &shape, ShapeID: shape.ID}
}

// NewDeletedEvent records a deletion; only the id survives.
func NewDeletedEvent(id int64) Event {
	return Event{Kind: EventDeleted, ShapeID: id}
}

// Payload returns what goes on the wire: the shape for created/updated,
// the bare id for deleted.
func (e Event) Payload() interface{} {
	if e.Kind == EventDeleted {
		return e.ShapeID
	}
	return e.Shape
}
