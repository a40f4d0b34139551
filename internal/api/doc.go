// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

// Package api implements the HTTP boundary of the synchronization core:
// the shape CRUD endpoints, the websocket subscription endpoint, health
// probes, and the Chi routing tree that binds them together.
//
// All mutations flow through the gateway so that store state and
// broadcast events stay consistent. Read endpoints go straight to the
// store.
package api
