// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shapesync/shapesync/internal/logging"
	"github.com/shapesync/shapesync/internal/models"
	"github.com/shapesync/shapesync/internal/store"
	"github.com/shapesync/shapesync/internal/validation"
	ws "github.com/shapesync/shapesync/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func setupGateway() (*Gateway, *store.Store, *ws.Hub) {
	st := store.New()
	hub := ws.NewHub(16)
	return New(st, hub), st, hub
}

// nextMessage drains one message from the session with a test deadline.
func nextMessage(t *testing.T, session *ws.Session) ws.Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, err := session.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	return msg
}

func validCreate() models.CreateShapeRequest {
	return models.CreateShapeRequest{
		Name:  "red circle",
		Color: "#ff0000",
		Kind:  models.ShapeKindCircle,
	}
}

func TestGateway_SubmitCreate(t *testing.T) {
	gw, st, _ := setupGateway()

	event, err := gw.SubmitCreate(validCreate())
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}

	if event.Kind != models.EventCreated {
		t.Errorf("Expected created event, got %q", event.Kind)
	}
	if event.Shape == nil {
		t.Fatal("Created event missing shape")
	}
	if event.Shape.ID == 0 {
		t.Error("Created shape has zero id")
	}
	if st.Len() != 1 {
		t.Errorf("Expected 1 shape in store, got %d", st.Len())
	}
}

func TestGateway_SubmitCreate_Invalid(t *testing.T) {
	gw, st, _ := setupGateway()
	session := gw.Attach()
	nextMessage(t, session) // drain initial

	tests := []struct {
		name string
		req  models.CreateShapeRequest
	}{
		{"missing name", models.CreateShapeRequest{Color: "#ff0000", Kind: models.ShapeKindCircle}},
		{"name too long", models.CreateShapeRequest{Name: string(make([]byte, 101)), Color: "#ff0000", Kind: models.ShapeKindCircle}},
		{"color not hex", models.CreateShapeRequest{Name: "x", Color: "abc", Kind: models.ShapeKindCircle}},
		{"color missing hash", models.CreateShapeRequest{Name: "x", Color: "ff00000", Kind: models.ShapeKindCircle}},
		{"color short form", models.CreateShapeRequest{Name: "x", Color: "#f00", Kind: models.ShapeKindCircle}},
		{"unknown kind", models.CreateShapeRequest{Name: "x", Color: "#ff0000", Kind: "hexagon"}},
		{"missing kind", models.CreateShapeRequest{Name: "x", Color: "#ff0000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gw.SubmitCreate(tt.req)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}

	if st.Len() != 0 {
		t.Errorf("Rejected submissions mutated the store: %d shapes", st.Len())
	}

	// No event reached the session
	select {
	case msg := <-session.C():
		t.Errorf("Rejected submission was broadcast: %+v", msg)
	default:
	}
}

func TestGateway_SubmitUpdate(t *testing.T) {
	gw, _, _ := setupGateway()
	created, err := gw.SubmitCreate(validCreate())
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}

	event, err := gw.SubmitUpdate(created.ShapeID, models.UpdateShapeRequest{
		Name:  "blue square",
		Color: "#0000ff",
		Kind:  models.ShapeKindRectangle,
	})
	if err != nil {
		t.Fatalf("SubmitUpdate failed: %v", err)
	}

	if event.Kind != models.EventUpdated {
		t.Errorf("Expected updated event, got %q", event.Kind)
	}
	if event.Shape.Name != "blue square" || event.Shape.Kind != models.ShapeKindRectangle {
		t.Errorf("Event carries stale fields: %+v", event.Shape)
	}
	if event.Shape.ID != created.ShapeID {
		t.Errorf("Update changed id: %d -> %d", created.ShapeID, event.Shape.ID)
	}
}

func TestGateway_SubmitUpdate_NotFound(t *testing.T) {
	gw, _, _ := setupGateway()
	session := gw.Attach()
	nextMessage(t, session)

	_, err := gw.SubmitUpdate(12345, models.UpdateShapeRequest{
		Name:  "ghost",
		Color: "#123456",
		Kind:  models.ShapeKindCircle,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	select {
	case msg := <-session.C():
		t.Errorf("Failed update was broadcast: %+v", msg)
	default:
	}
}

func TestGateway_SubmitDelete(t *testing.T) {
	gw, st, _ := setupGateway()
	created, err := gw.SubmitCreate(validCreate())
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}

	event, err := gw.SubmitDelete(created.ShapeID)
	if err != nil {
		t.Fatalf("SubmitDelete failed: %v", err)
	}

	if event.Kind != models.EventDeleted {
		t.Errorf("Expected deleted event, got %q", event.Kind)
	}
	if event.Shape != nil {
		t.Error("Deleted event should carry only the id")
	}
	if event.ShapeID != created.ShapeID {
		t.Errorf("Deleted event id %d, want %d", event.ShapeID, created.ShapeID)
	}
	if st.Len() != 0 {
		t.Errorf("Expected empty store, got %d", st.Len())
	}
}

func TestGateway_SubmitDelete_NotFound(t *testing.T) {
	gw, _, _ := setupGateway()

	_, err := gw.SubmitDelete(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestGateway_Attach_InitialSnapshot(t *testing.T) {
	gw, _, _ := setupGateway()

	first, err := gw.SubmitCreate(validCreate())
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}

	session := gw.Attach()
	msg := nextMessage(t, session)

	if msg.Type != ws.MessageTypeInitial {
		t.Fatalf("First message type %q, want %q", msg.Type, ws.MessageTypeInitial)
	}
	snapshot, ok := msg.Data.([]models.Shape)
	if !ok {
		t.Fatalf("Initial data is %T, want []models.Shape", msg.Data)
	}
	if len(snapshot) != 1 || snapshot[0].ID != first.ShapeID {
		t.Errorf("Snapshot %+v does not match committed state", snapshot)
	}
}

func TestGateway_SessionObservesCommitOrder(t *testing.T) {
	gw, _, _ := setupGateway()
	session := gw.Attach()

	msg := nextMessage(t, session)
	if msg.Type != ws.MessageTypeInitial {
		t.Fatalf("First message type %q, want initial", msg.Type)
	}

	created, err := gw.SubmitCreate(validCreate())
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}
	if _, err := gw.SubmitUpdate(created.ShapeID, models.UpdateShapeRequest{
		Name: "renamed", Color: "#00ff00", Kind: models.ShapeKindTriangle,
	}); err != nil {
		t.Fatalf("SubmitUpdate failed: %v", err)
	}
	if _, err := gw.SubmitDelete(created.ShapeID); err != nil {
		t.Fatalf("SubmitDelete failed: %v", err)
	}

	want := []string{ws.MessageTypeCreated, ws.MessageTypeUpdated, ws.MessageTypeDeleted}
	for _, wantType := range want {
		msg := nextMessage(t, session)
		if msg.Type != wantType {
			t.Errorf("Message type %q, want %q", msg.Type, wantType)
		}
	}
}

func TestGateway_AttachMidStream_NoGapNoReplay(t *testing.T) {
	gw, _, _ := setupGateway()

	before, err := gw.SubmitCreate(validCreate())
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}

	session := gw.Attach()

	after, err := gw.SubmitCreate(models.CreateShapeRequest{
		Name: "second", Color: "#abcdef", Kind: models.ShapeKindRectangle,
	})
	if err != nil {
		t.Fatalf("SubmitCreate failed: %v", err)
	}

	initial := nextMessage(t, session)
	snapshot := initial.Data.([]models.Shape)
	if len(snapshot) != 1 || snapshot[0].ID != before.ShapeID {
		t.Errorf("Snapshot should hold exactly the pre-attach shape, got %+v", snapshot)
	}

	next := nextMessage(t, session)
	if next.Type != ws.MessageTypeCreated {
		t.Fatalf("Expected created event after snapshot, got %q", next.Type)
	}
	shape := next.Data.(*models.Shape)
	if shape.ID != after.ShapeID {
		t.Errorf("Event shape id %d, want %d (the post-attach commit)", shape.ID, after.ShapeID)
	}
}

func TestGateway_ConcurrentAttach_ConsistentStreams(t *testing.T) {
	st := store.New()
	hub := ws.NewHub(512)
	gw := New(st, hub)

	const commits = 200
	const attachers = 8

	errCh := make(chan error, attachers+1)
	var wg sync.WaitGroup

	// Single writer committing creates; ids come out as 1..commits.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < commits; i++ {
			if _, err := gw.SubmitCreate(validCreate()); err != nil {
				errCh <- fmt.Errorf("SubmitCreate %d: %w", i, err)
				return
			}
		}
	}()

	// Sessions attach while commits are in flight. Each stream must be
	// a prefix-complete snapshot followed by exactly the successor
	// events: no torn snapshot, no replay, no gap.
	for a := 0; a < attachers; a++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			session := gw.Attach()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			msg, err := session.Next(ctx)
			if err != nil {
				errCh <- fmt.Errorf("attacher %d: initial: %w", n, err)
				return
			}
			if msg.Type != ws.MessageTypeInitial {
				errCh <- fmt.Errorf("attacher %d: first message type %q", n, msg.Type)
				return
			}

			snapshot, ok := msg.Data.([]models.Shape)
			if !ok {
				errCh <- fmt.Errorf("attacher %d: initial data is %T", n, msg.Data)
				return
			}
			for i, shape := range snapshot {
				if shape.ID != int64(i+1) {
					errCh <- fmt.Errorf("attacher %d: torn snapshot: position %d holds id %d", n, i, shape.ID)
					return
				}
			}

			last := int64(len(snapshot))
			for last < commits {
				msg, err := session.Next(ctx)
				if err != nil {
					errCh <- fmt.Errorf("attacher %d: after id %d: %w", n, last, err)
					return
				}
				shape, ok := msg.Data.(*models.Shape)
				if !ok {
					errCh <- fmt.Errorf("attacher %d: event data is %T", n, msg.Data)
					return
				}
				switch {
				case shape.ID <= last:
					errCh <- fmt.Errorf("attacher %d: replayed id %d after %d", n, shape.ID, last)
					return
				case shape.ID > last+1:
					errCh <- fmt.Errorf("attacher %d: gap: id %d after %d", n, shape.ID, last)
					return
				}
				last = shape.ID
			}
		}(a)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Error(err)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(validation.ValidateStruct(&models.CreateShapeRequest{})) {
		t.Error("Expected IsValidation true for a validation failure")
	}
	if IsValidation(errors.New("other")) {
		t.Error("Expected IsValidation false for a plain error")
	}
	if IsValidation(ErrNotFound) {
		t.Error("Expected IsValidation false for ErrNotFound")
	}
}
