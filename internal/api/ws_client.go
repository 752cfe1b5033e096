package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSClient is one connected dashboard.
type WSClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu            sync.RWMutex
	subscriptions map[string]struct{}
}

// readLoop handles requests from the dashboard until the connection
// drops or the pong deadline passes.
func (c *WSClient) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait)) }
	c.conn.SetReadLimit(int64(c.hub.cfg.MaxMessageSize))
	extend() //nolint:errcheck // a failed deadline surfaces on the next read
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		extend() //nolint:errcheck // as above
		c.handleMessage(data)
	}
}

// writeLoop drains send and pings on the hub's interval. It exits when
// send is closed or a write fails.
func (c *WSClient) writeLoop() {
	ping := time.NewTicker(c.hub.pingEvery)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeWait)) //nolint:errcheck // write reports it
		return c.conn.WriteMessage(kind, data)
	}

	for {
		var err error
		select {
		case frame, open := <-c.send:
			if !open {
				write(websocket.CloseMessage, nil) //nolint:errcheck // closing anyway
				return
			}
			err = write(websocket.TextMessage, frame)
		case <-ping.C:
			err = write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var req struct {
		Type    string             `json:"type"`
		ID      string             `json:"id"`
		Payload WSSubscribePayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}
	channels := req.Payload.Channels

	switch req.Type {
	case WSTypePing:
		c.sendMessage(WSMessage{Type: WSTypePong, ID: req.ID})

	case WSTypeSubscribe:
		// All or nothing: one unknown channel rejects the request.
		for _, ch := range channels {
			if !subscribable[ch] {
				c.sendError(req.ID, "unknown channel: "+ch)
				return
			}
		}
		c.setSubscribed(channels, true)
		c.sendMessage(WSMessage{Type: WSTypeResponse, ID: req.ID, Payload: map[string]any{"subscribed": channels}})

	case WSTypeUnsubscribe:
		c.setSubscribed(channels, false)
		c.sendMessage(WSMessage{Type: WSTypeResponse, ID: req.ID, Payload: map[string]any{"unsubscribed": channels}})

	default:
		c.sendError(req.ID, "unknown message type: "+req.Type)
	}
}

func (c *WSClient) setSubscribed(channels []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if on {
			c.subscriptions[ch] = struct{}{}
		} else {
			delete(c.subscriptions, ch)
		}
	}
}

func (c *WSClient) isSubscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.subscriptions[channel]
	return ok
}

// trySend never blocks. Frames for a full buffer, or for a client
// unregistered mid-broadcast, are dropped.
func (c *WSClient) trySend(frame []byte) {
	defer func() { recover() }() //nolint:errcheck // send on closed channel

	select {
	case c.send <- frame:
	default:
	}
}

func (c *WSClient) sendMessage(msg WSMessage) {
	if frame, err := encodeWS(msg); err == nil {
		c.trySend(frame)
	}
}

func (c *WSClient) sendError(id, message string) {
	c.sendMessage(WSMessage{Type: WSTypeError, ID: id, Payload: map[string]string{"message": message}})
}
