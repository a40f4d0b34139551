// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/shapesync/shapesync/internal/models"
)

func TestNew(t *testing.T) {
	s := New()

	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d shapes", s.Len())
	}
	if got := s.Snapshot(); len(got) != 0 {
		t.Errorf("Expected empty snapshot, got %d shapes", len(got))
	}
}

func TestStore_Create(t *testing.T) {
	s := New()

	shape := s.Create("circle one", "#ff0000", models.ShapeKindCircle)

	if shape.ID != 1 {
		t.Errorf("Expected first id 1, got %d", shape.ID)
	}
	if shape.Name != "circle one" {
		t.Errorf("Expected name 'circle one', got %q", shape.Name)
	}
	if shape.Color != "#ff0000" {
		t.Errorf("Expected color '#ff0000', got %q", shape.Color)
	}
	if shape.Kind != models.ShapeKindCircle {
		t.Errorf("Expected kind circle, got %q", shape.Kind)
	}
	if shape.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}
	if shape.CreatedAt.Location() != shape.CreatedAt.UTC().Location() {
		t.Error("Expected CreatedAt in UTC")
	}

	second := s.Create("rect", "#00ff00", models.ShapeKindRectangle)
	if second.ID != 2 {
		t.Errorf("Expected second id 2, got %d", second.ID)
	}
}

func TestStore_Get(t *testing.T) {
	s := New()
	created := s.Create("tri", "#0000ff", models.ShapeKindTriangle)

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != created {
		t.Errorf("Get returned %+v, want %+v", got, created)
	}

	_, err = s.Get(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for absent id, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	s := New()
	created := s.Create("before", "#111111", models.ShapeKindCircle)

	updated, err := s.Update(created.ID, "after", "#222222", models.ShapeKindRectangle)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("Update changed id: %d -> %d", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("Update changed CreatedAt")
	}
	if updated.Name != "after" || updated.Color != "#222222" || updated.Kind != models.ShapeKindRectangle {
		t.Errorf("Update did not replace mutable fields: %+v", updated)
	}

	stored, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get after update failed: %v", err)
	}
	if stored != updated {
		t.Errorf("Stored shape %+v differs from returned %+v", stored, updated)
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	s := New()

	_, err := s.Update(42, "name", "#333333", models.ShapeKindCircle)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Failed update mutated the store: %d shapes", s.Len())
	}
}

func TestStore_Delete(t *testing.T) {
	s := New()
	created := s.Create("gone soon", "#444444", models.ShapeKindTriangle)

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store after delete, got %d", s.Len())
	}

	if err := s.Delete(created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_IDsNeverReused(t *testing.T) {
	s := New()

	first := s.Create("a", "#555555", models.ShapeKindCircle)
	if err := s.Delete(first.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	second := s.Create("b", "#666666", models.ShapeKindCircle)
	if second.ID == first.ID {
		t.Errorf("Deleted id %d was reused", first.ID)
	}
	if second.ID <= first.ID {
		t.Errorf("Expected ids to grow: %d then %d", first.ID, second.ID)
	}
}

func TestStore_Snapshot_Ordering(t *testing.T) {
	s := New()
	s.Create("c", "#777777", models.ShapeKindCircle)
	s.Create("b", "#888888", models.ShapeKindRectangle)
	s.Create("a", "#999999", models.ShapeKindTriangle)

	snapshot := s.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("Expected 3 shapes, got %d", len(snapshot))
	}
	for i := 1; i < len(snapshot); i++ {
		if snapshot[i-1].ID >= snapshot[i].ID {
			t.Errorf("Snapshot not ordered by id: %d before %d", snapshot[i-1].ID, snapshot[i].ID)
		}
	}
}

func TestStore_Snapshot_IsCopy(t *testing.T) {
	s := New()
	created := s.Create("stable", "#aaaaaa", models.ShapeKindCircle)

	snapshot := s.Snapshot()

	if _, err := s.Update(created.ID, "changed", "#bbbbbb", models.ShapeKindRectangle); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if snapshot[0].Name != "stable" {
		t.Error("Snapshot was affected by a later mutation")
	}
}

func TestStore_ConcurrentCreates(t *testing.T) {
	s := New()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s.Create("shape", "#cccccc", models.ShapeKindCircle)
			}
		}()
	}
	wg.Wait()

	if s.Len() != workers*perWorker {
		t.Errorf("Expected %d shapes, got %d", workers*perWorker, s.Len())
	}

	// No duplicate ids
	snapshot := s.Snapshot()
	seen := make(map[int64]bool, len(snapshot))
	for _, shape := range snapshot {
		if seen[shape.ID] {
			t.Errorf("Duplicate id %d", shape.ID)
		}
		seen[shape.ID] = true
	}
}
