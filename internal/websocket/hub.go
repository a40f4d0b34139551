// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/shapesync/shapesync/internal/logging"
	"github.com/shapesync/shapesync/internal/metrics"
	"github.com/shapesync/shapesync/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path
	// (e.g. SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was
	// exceeded, which may point at a hung shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub owns the set of attached subscriber sessions and fans every
// committed event out to each of them.
//
// The hub's mutex makes the subscriber set itself consistent under
// concurrent attach/detach/publish. The stronger ordering guarantee,
// that an attach can never interleave between a store commit and the
// publish of its event, is provided by the gateway, which calls Attach
// and Publish while holding the single writer lock.
//
// Back-pressure policy: publishing never blocks on a slow consumer. A
// session whose queue is full has fallen fatally behind and is dropped;
// a reconnecting viewer gets a fresh snapshot, which is cheaper than
// unbounded buffering.
type Hub struct {
	mu       sync.Mutex
	sessions map[*Session]struct{}
	buffer   int
}

// NewHub creates a hub whose sessions carry queues of the given size.
func NewHub(sessionBuffer int) *Hub {
	if sessionBuffer < 1 {
		sessionBuffer = 256
	}
	return &Hub{
		sessions: make(map[*Session]struct{}),
		buffer:   sessionBuffer,
	}
}

// Attach creates a session, seeds its queue with the initial full-state
// message built from the given snapshot, and registers it in the live
// subscriber set. Seeding and registration happen under the hub lock so
// the initial message is always first on the queue.
//
// Callers that need the attach to be consistent with in-flight commits
// (every caller, in practice) must go through the gateway, which takes
// the snapshot and calls Attach inside the writer's critical section.
func (h *Hub) Attach(snapshot []models.Shape) *Session {
	session := newSession(h.buffer)
	// The queue is empty and at least size 1, so this never drops.
	session.queue <- Message{Type: MessageTypeInitial, Data: snapshot}

	h.mu.Lock()
	h.sessions[session] = struct{}{}
	total := len(h.sessions)
	// Inc under the lock so the gauge never skews against the drop and
	// detach paths, which decrement while holding it.
	metrics.SessionsActive.Inc()
	h.mu.Unlock()

	metrics.SnapshotShapes.Observe(float64(len(snapshot)))
	logging.Info().
		Uint64("session_id", session.id).
		Int("snapshot_shapes", len(snapshot)).
		Int("total_sessions", total).
		Msg("subscriber session attached")
	return session
}

// Publish enqueues the event on every attached session's queue without
// blocking. Sessions whose queue is full are dropped. Sessions are
// visited in id order so delivery order across sessions is stable.
func (h *Hub) Publish(event models.Event) {
	msg := Message{Type: string(event.Kind), Data: event.Payload()}

	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].id < sessions[j].id
	})

	var toDrop []*Session
	for _, session := range sessions {
		select {
		case session.queue <- msg:
		default:
			// Queue full: the session has fallen fatally behind.
			toDrop = append(toDrop, session)
		}
	}

	for _, session := range toDrop {
		delete(h.sessions, session)
		close(session.queue)
		metrics.SessionsActive.Dec()
		metrics.SessionsDroppedTotal.Inc()
		logging.Warn().
			Uint64("session_id", session.id).
			Str("event", string(event.Kind)).
			Msg("subscriber session dropped: delivery queue full")
	}

	metrics.EventsBroadcastTotal.Inc()
}

// Detach removes the session from the subscriber set and closes its
// queue. Idempotent: detaching an already-detached session is a no-op.
// Mandatory cleanup on every transport exit path.
func (h *Hub) Detach(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(session)
}

// detachLocked removes one session; must be called with mu held.
func (h *Hub) detachLocked(session *Session) {
	if _, ok := h.sessions[session]; !ok {
		return
	}
	delete(h.sessions, session)
	close(session.queue)
	metrics.SessionsActive.Dec()
	logging.Info().
		Uint64("session_id", session.id).
		Int("total_sessions", len(h.sessions)).
		Msg("subscriber session detached")
}

// SessionCount returns the number of attached sessions.
func (h *Hub) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Serve blocks until ctx is done, then closes every attached session.
// This is the suture.Service entry point: the hub itself is passive
// (all work happens in Attach/Publish/Detach), but supervising it ties
// session teardown to process shutdown.
func (h *Hub) Serve(ctx context.Context) error {
	<-ctx.Done()
	h.closeAll(ctx)
	return ctx.Err()
}

// closeAll detaches every session, in id order for a consistent
// shutdown sequence, and logs the shutdown with structured fields.
func (h *Hub) closeAll(ctx context.Context) {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].id < sessions[j].id
	})
	for _, session := range sessions {
		delete(h.sessions, session)
		close(session.queue)
		metrics.SessionsActive.Dec()
	}
	h.mu.Unlock()

	reason := ShutdownReasonContextCanceled
	if ctx.Err() == context.DeadlineExceeded {
		reason = ShutdownReasonContextDeadline
	}

	// ctx.Err() is not logged as an error: cancellation is the expected
	// shutdown path.
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("sessions_closed", len(sessions)).
		Msg("websocket hub stopped")
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "websocket-hub"
}
