// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package models defines the domain types shared across the application:
// the Shape entity, the committed-mutation Event, and the HTTP request
// and response envelopes.
package models

import "time"

// ShapeKind enumerates the closed set of drawable shape types.
type ShapeKind string

const (
	ShapeKindCircle    ShapeKind = "circle"
	ShapeKindRectangle ShapeKind = "rectangle"
	ShapeKindTriangle  ShapeKind = "triangle"
)

// Valid reports whether the kind is a member of the closed enumeration.
func (k ShapeKind) Valid() bool {
	switch k {
	case ShapeKindCircle, ShapeKindRectangle, ShapeKindTriangle:
		return true
	default:
		return false
	}
}

// Shape is one drawable object in the shared collection.
//
// ID is assigned by the store at creation and never changes; ids are
// never reused within a process lifetime. CreatedAt is assigned once at
// creation. The JSON field names match the wire format consumed by
// existing viewers ("shape" for the kind, "timestamp" for CreatedAt).
type Shape struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Kind      ShapeKind `json:"shape"`
	CreatedAt time.Time `json:"timestamp"`
}

// CreateShapeRequest is the payload for creating a shape.
//
// Color must be a 6-hex-digit value with a leading '#': hexcolor alone
// also accepts the short #rgb form, so len=7 pins the long form.
type CreateShapeRequest struct {
	Name  string    `json:"name" validate:"required,max=100"`
	Color string    `json:"color" validate:"required,len=7,hexcolor"`
	Kind  ShapeKind `json:"shape" validate:"required,oneof=circle rectangle triangle"`
}

// UpdateShapeRequest is the payload for replacing a shape's mutable
// fields. Validation rules are identical to create.
type UpdateShapeRequest struct {
	Name  string    `json:"name" validate:"required,max=100"`
	Color string    `json:"color" validate:"required,len=7,hexcolor"`
	Kind  ShapeKind `json:"shape" validate:"required,oneof=circle rectangle triangle"`
}
