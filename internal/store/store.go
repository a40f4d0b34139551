// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package store holds the authoritative in-memory shape collection.
//
// The store is the single source of truth: every mutation passes through
// it and becomes observable only through the Event the gateway derives
// from the returned shape. The store performs no I/O and holds no
// subscriber references; distribution is the hub's concern.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shapesync/shapesync/internal/models"
)

// ErrNotFound is returned when an operation references an id that is
// not present in the collection.
var ErrNotFound = errors.New("shape not found")

// Store is the authoritative mapping of shape ids to shape records.
//
// Ids are assigned from a counter that only ever grows, so an id freed
// by delete is never handed out again within the process lifetime. The
// internal RWMutex makes reads safe against concurrent mutations;
// ordering of mutations relative to broadcast is the gateway's writer
// lock, not this one.
type Store struct {
	mu     sync.RWMutex
	shapes map[int64]models.Shape
	nextID int64
}

// New creates an empty store.
func New() *Store {
	return &Store{
		shapes: make(map[int64]models.Shape),
	}
}

// Create assigns a fresh id and creation timestamp, inserts the shape,
// and returns the stored record. Input validation is the caller's
// responsibility; Create never fails for well-formed inputs.
func (s *Store) Create(name, color string, kind models.ShapeKind) models.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	shape := models.Shape{
		ID:        s.nextID,
		Name:      name,
		Color:     color,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	s.shapes[shape.ID] = shape
	return shape
}

// Update replaces the mutable fields of the shape with the given id and
// returns the updated record. ID and CreatedAt are never altered.
// Returns ErrNotFound if the id is absent.
func (s *Store) Update(id int64, name, color string, kind models.ShapeKind) (models.Shape, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shape, ok := s.shapes[id]
	if !ok {
		return models.Shape{}, fmt.Errorf("update shape %d: %w", id, ErrNotFound)
	}

	shape.Name = name
	shape.Color = color
	shape.Kind = kind
	s.shapes[id] = shape
	return shape, nil
}

// Delete removes the shape with the given id. The id is retired
// permanently; it will never be reassigned. Returns ErrNotFound if the
// id is absent.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shapes[id]; !ok {
		return fmt.Errorf("delete shape %d: %w", id, ErrNotFound)
	}
	delete(s.shapes, id)
	return nil
}

// Get returns the shape with the given id, or ErrNotFound.
func (s *Store) Get(id int64) (models.Shape, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shape, ok := s.shapes[id]
	if !ok {
		return models.Shape{}, fmt.Errorf("get shape %d: %w", id, ErrNotFound)
	}
	return shape, nil
}

// Snapshot returns a point-in-time copy of all current shapes, ordered
// by id ascending. The slice is owned by the caller; later mutations do
// not affect it.
func (s *Store) Snapshot() []models.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shapes := make([]models.Shape, 0, len(s.shapes))
	for _, shape := range s.shapes {
		shapes = append(shapes, shape)
	}
	sort.Slice(shapes, func(i, j int) bool {
		return shapes[i].ID < shapes[j].ID
	})
	return shapes
}

// Len returns the number of shapes currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shapes)
}
