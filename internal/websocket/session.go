// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package websocket

import (
	"context"
	"errors"
	"sync/atomic"
)

// Message types delivered to subscriber sessions. A session receives
// exactly one "initial" message at attach time, then one message per
// committed event in commit order.
const (
	MessageTypeInitial = "initial"
	MessageTypeCreated = "created"
	MessageTypeUpdated = "updated"
	MessageTypeDeleted = "deleted"
)

// Message is one outbound payload: the initial snapshot or a live event.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ErrSessionDetached is returned by Next once the session has been
// detached and its queue fully drained.
var ErrSessionDetached = errors.New("session detached")

// sessionIDCounter generates unique, monotonically increasing session ids.
// Sessions are sorted by id during fan-out so delivery order across
// sessions is stable within a run.
var sessionIDCounter atomic.Uint64

// Session is one connected viewer's delivery channel. It holds a
// bounded queue of outbound messages that the transport drains via Next
// (or C for select-based loops). A session is passive: it never
// inspects content and never blocks the publisher. When the hub detaches
// the session it closes the queue; messages already enqueued can still
// be drained, after which Next reports ErrSessionDetached.
type Session struct {
	id    uint64
	queue chan Message
}

func newSession(buffer int) *Session {
	if buffer < 1 {
		buffer = 1
	}
	return &Session{
		id:    sessionIDCounter.Add(1),
		queue: make(chan Message, buffer),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() uint64 {
	return s.id
}

// C exposes the delivery queue for select-based transport loops. The
// channel is closed when the session is detached.
func (s *Session) C() <-chan Message {
	return s.queue
}

// Next blocks until the next outbound message is available, the session
// is detached (ErrSessionDetached), or ctx is done (ctx.Err()).
func (s *Session) Next(ctx context.Context) (Message, error) {
	select {
	case msg, ok := <-s.queue:
		if !ok {
			return Message{}, ErrSessionDetached
		}
		return msg, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
