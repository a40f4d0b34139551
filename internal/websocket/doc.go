// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package websocket implements the broadcast fan-out: the Hub owning
// the subscriber set, the per-viewer Session with its bounded delivery
// queue, and the Client bridging a gorilla/websocket connection onto a
// session.
//
// Delivery contract per session: one initial full-state message at
// attach, then every event committed afterwards, in commit order, with
// no duplicates and no gaps. The ordering half of that contract is
// enforced by the gateway's writer lock; the hub enforces the
// per-session queue discipline and the drop-on-overflow policy.
package websocket
