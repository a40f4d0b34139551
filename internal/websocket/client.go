// ShapeSync - Real-Time Shape Collection Synchronization
// Copyright 2026 ShapeSync contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shapesync/shapesync

package websocket

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/shapesync/shapesync/internal/logging"
)

// ClientConfig holds transport timing parameters for one connection.
type ClientConfig struct {
	// WriteWait is the deadline for a single outbound write.
	WriteWait time.Duration

	// PongWait is how long to wait for a pong before declaring the peer
	// gone. Pings are sent at 90% of this interval.
	PongWait time.Duration

	// MaxMessageSize bounds inbound frames. Inbound payloads are
	// discarded, but the limit keeps a misbehaving peer from buffering
	// arbitrary data.
	MaxMessageSize int64
}

// DefaultClientConfig returns production defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 4 * 1024,
	}
}

func (c ClientConfig) withDefaults() ClientConfig {
	d := DefaultClientConfig()
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	return c
}

// Client bridges one websocket connection and its subscriber session:
// the write pump drains the session queue onto the wire, the read pump
// watches the connection for disconnect. Whichever pump exits first
// detaches the session, so the hub registration never outlives the
// connection.
type Client struct {
	hub     *Hub
	session *Session
	conn    *websocket.Conn
	cfg     ClientConfig
}

// NewClient wraps an upgraded connection and an attached session.
func NewClient(hub *Hub, session *Session, conn *websocket.Conn, cfg ClientConfig) *Client {
	return &Client{
		hub:     hub,
		session: session,
		conn:    conn,
		cfg:     cfg.withDefaults(),
	}
}

// Start begins the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump consumes inbound frames until the connection dies. Payloads
// are discarded: client messages have no effect on shape state. The
// pump exists to run the pong handler and to detect disconnect.
func (c *Client) readPump() {
	defer func() {
		c.hub.Detach(c.session)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Uint64("session_id", c.session.ID()).Msg("unexpected websocket close")
			}
			return
		}
	}
}

// writePump drains the session queue onto the wire and keeps the
// connection alive with pings. It exits when the session is detached
// (queue closed) or a write fails.
func (c *Client) writePump() {
	pingPeriod := c.cfg.PongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.Detach(c.session)
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.session.C():
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub detached the session.
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				logging.Error().Err(err).Str("type", msg.Type).Msg("failed to marshal outbound message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Error().Err(err).Uint64("session_id", c.session.ID()).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
