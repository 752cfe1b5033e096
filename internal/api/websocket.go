package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/logging"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// Broadcast channels.
const (
	// ChannelLoadEvent carries every control.Event.
	ChannelLoadEvent = "load.event"

	// ChannelLoadAggregate carries the aggregate after every control event.
	ChannelLoadAggregate = "load.aggregate"

	// ChannelLoadSnapshot is sent once on connect with the full device
	// list. It cannot be subscribed to.
	ChannelLoadSnapshot = "load.snapshot"
)

const wsSendBufferSize = 64

var subscribable = map[string]bool{
	ChannelLoadEvent:     true,
	ChannelLoadAggregate: true,
}

// WSMessage is the envelope for every frame in either direction.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe requests.
type WSSubscribePayload struct {
	Channels []string `json:"channels"`
}

// Hub fans control events out to connected dashboards. It is a
// control.Notifier.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	// pongWait bounds silence from a client; writeWait bounds one write.
	pingEvery, pongWait, writeWait time.Duration

	mu      sync.RWMutex
	clients map[*WSClient]struct{}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS middleware has already vetted the origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// NewHub creates a hub with the ping and timeout settings of cfg, given
// in seconds.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	ping := time.Duration(cfg.PingInterval) * time.Second
	pong := time.Duration(cfg.PongTimeout) * time.Second
	return &Hub{
		cfg:       cfg,
		logger:    logger,
		pingEvery: ping,
		pongWait:  ping + pong,
		writeWait: pong,
		clients:   make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	}
}

// Notify publishes ev on load.event and its aggregate on load.aggregate.
// A slow dashboard misses messages; the controller is never held up.
func (h *Hub) Notify(_ context.Context, ev control.Event) error {
	h.Broadcast(ChannelLoadEvent, ev)
	h.Broadcast(ChannelLoadAggregate, ev.Aggregate)
	return nil
}

func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("dashboard connected", "clients", n)
}

// Unregister drops c and closes its send channel. Repeated calls are
// harmless.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Debug("dashboard disconnected", "clients", n)
	}
}

// Broadcast queues payload for every client subscribed to channel.
func (h *Hub) Broadcast(channel string, payload any) {
	frame, err := encodeWS(WSMessage{Type: WSTypeEvent, Channel: channel, Payload: payload})
	if err != nil {
		h.logger.Error("encoding websocket broadcast", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		if c.isSubscribed(channel) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.trySend(frame)
	}
}

// ClientCount returns the number of connected dashboards.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// handleWebSocket upgrades the request and greets the dashboard with a
// load.snapshot. Live channels follow once it subscribes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &WSClient{
		hub:           s.hub,
		conn:          conn,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	s.hub.Register(c)

	loads := s.ctrl.Snapshot()
	c.sendMessage(WSMessage{
		Type:    WSTypeEvent,
		Channel: ChannelLoadSnapshot,
		Payload: loadList{Loads: loads, Count: len(loads), Aggregate: s.ctrl.Aggregate()},
	})

	go c.writeLoop()
	go c.readLoop()
}

func encodeWS(msg WSMessage) ([]byte, error) {
	msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(msg)
}
