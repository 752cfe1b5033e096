package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gramjyoti/microgrid-core/internal/control"
	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
)

func newTestClient(hub *Hub, channels ...string) *WSClient {
	c := &WSClient{
		hub:           hub,
		send:          make(chan []byte, wsSendBufferSize),
		subscriptions: make(map[string]struct{}),
	}
	for _, ch := range channels {
		c.subscriptions[ch] = struct{}{}
	}
	return c
}

func newTestHub() *Hub {
	return NewHub(config.WebSocketConfig{Path: "/ws", MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10}, testLogger())
}

func receive(t *testing.T, c *WSClient) WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return WSMessage{}
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := newTestHub()
	c := newTestClient(hub)

	hub.Register(c)
	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}

	hub.Unregister(c)
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d, want 0", got)
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel not closed after Unregister")
	}

	// A second unregister must not close the channel again.
	hub.Unregister(c)
}

func TestHub_BroadcastOnlyToSubscribers(t *testing.T) {
	hub := newTestHub()
	subscribed := newTestClient(hub, ChannelLoadAggregate)
	other := newTestClient(hub, ChannelLoadEvent)
	hub.Register(subscribed)
	hub.Register(other)

	hub.Broadcast(ChannelLoadAggregate, device.Aggregate{ActiveDeviceCount: 2})

	msg := receive(t, subscribed)
	if msg.Type != WSTypeEvent || msg.Channel != ChannelLoadAggregate {
		t.Errorf("message = %s/%s, want %s/%s", msg.Type, msg.Channel, WSTypeEvent, ChannelLoadAggregate)
	}
	if msg.Timestamp == "" {
		t.Error("timestamp not set")
	}
	if len(other.send) != 0 {
		t.Errorf("unsubscribed client received %d messages", len(other.send))
	}
}

func TestHub_BroadcastAfterUnregister(t *testing.T) {
	hub := newTestHub()
	c := newTestClient(hub, ChannelLoadEvent)
	hub.Register(c)
	hub.Unregister(c)

	// Must not panic on the closed channel.
	hub.Broadcast(ChannelLoadEvent, map[string]string{"k": "v"})
}

func TestHub_Notify(t *testing.T) {
	hub := newTestHub()
	c := newTestClient(hub, ChannelLoadEvent, ChannelLoadAggregate)
	hub.Register(c)

	ev := control.Event{
		Kind:      control.EventToggled,
		DeviceID:  "water-pump",
		Aggregate: device.Aggregate{ActiveDeviceCount: 3, TotalActivePowerKW: 6.4},
	}
	if err := hub.Notify(context.Background(), ev); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if msg := receive(t, c); msg.Channel != ChannelLoadEvent {
		t.Errorf("first channel = %q, want %q", msg.Channel, ChannelLoadEvent)
	}
	msg := receive(t, c)
	if msg.Channel != ChannelLoadAggregate {
		t.Fatalf("second channel = %q, want %q", msg.Channel, ChannelLoadAggregate)
	}
	agg, ok := msg.Payload.(map[string]any)
	if !ok || agg["active_device_count"] != 3.0 {
		t.Errorf("aggregate payload = %v", msg.Payload)
	}
}

func TestHub_SlowClientDropsMessages(t *testing.T) {
	hub := newTestHub()
	c := newTestClient(hub, ChannelLoadEvent)
	hub.Register(c)

	for i := 0; i < wsSendBufferSize+10; i++ {
		hub.Broadcast(ChannelLoadEvent, "x")
	}
	if got := len(c.send); got != wsSendBufferSize {
		t.Errorf("buffered = %d, want %d", got, wsSendBufferSize)
	}
}

func TestWSClient_HandleMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
	}{
		{"subscribe", `{"type":"subscribe","id":"1","payload":{"channels":["load.event"]}}`, WSTypeResponse},
		{"unsubscribe", `{"type":"unsubscribe","id":"2","payload":{"channels":["load.event"]}}`, WSTypeResponse},
		{"ping", `{"type":"ping","id":"3"}`, WSTypePong},
		{"unknown channel", `{"type":"subscribe","id":"4","payload":{"channels":["load.snapshot"]}}`, WSTypeError},
		{"unknown type", `{"type":"reboot"}`, WSTypeError},
		{"invalid JSON", `not json`, WSTypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(newTestHub())
			c.handleMessage([]byte(tt.input))

			msg := receive(t, c)
			if msg.Type != tt.wantType {
				t.Errorf("type = %q, want %q (payload %v)", msg.Type, tt.wantType, msg.Payload)
			}
		})
	}
}

func TestWSClient_SubscribeRejectsWholeRequest(t *testing.T) {
	c := newTestClient(newTestHub())
	c.handleMessage([]byte(`{"type":"subscribe","payload":{"channels":["load.event","bogus"]}}`))

	receive(t, c)
	if c.isSubscribed(ChannelLoadEvent) {
		t.Error("valid channel subscribed despite rejected request")
	}
}

// ─── End to end ────────────────────────────────────────────────────

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	resp.Body.Close()
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readWS(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	//nolint:errcheck // Test deadline
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocket_SnapshotOnConnect(t *testing.T) {
	srv, _ := testServer(t, testOptions{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ws := dialWS(t, ts)
	msg := readWS(t, ws)

	if msg.Channel != ChannelLoadSnapshot {
		t.Fatalf("channel = %q, want %q", msg.Channel, ChannelLoadSnapshot)
	}
	payload, _ := msg.Payload.(map[string]any)
	if payload["count"] != 6.0 {
		t.Errorf("snapshot count = %v, want 6", payload["count"])
	}
}

func TestWebSocket_ReceivesControlEvents(t *testing.T) {
	srv, _ := testServer(t, testOptions{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ws := dialWS(t, ts)
	readWS(t, ws) // snapshot

	if err := ws.WriteJSON(map[string]any{
		"type":    WSTypeSubscribe,
		"id":      "sub-1",
		"payload": map[string]any{"channels": []string{ChannelLoadEvent}},
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readWS(t, ws); msg.Type != WSTypeResponse || msg.ID != "sub-1" {
		t.Fatalf("subscribe reply = %+v", msg)
	}

	resp, err := http.Post(ts.URL+"/api/v1/loads/water-pump/toggle", "application/json", strings.NewReader(`{"status":"on"}`)) //nolint:noctx // test
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	resp.Body.Close()

	msg := readWS(t, ws)
	if msg.Channel != ChannelLoadEvent {
		t.Fatalf("channel = %q, want %q", msg.Channel, ChannelLoadEvent)
	}
	ev, _ := msg.Payload.(map[string]any)
	if ev["kind"] != string(control.EventToggled) || ev["device_id"] != "water-pump" {
		t.Errorf("event = %v", ev)
	}
}

func TestWebSocket_Ping(t *testing.T) {
	srv, _ := testServer(t, testOptions{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ws := dialWS(t, ts)
	readWS(t, ws)

	if err := ws.WriteJSON(map[string]string{"type": WSTypePing, "id": "p1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readWS(t, ws); msg.Type != WSTypePong || msg.ID != "p1" {
		t.Errorf("reply = %+v, want pong p1", msg)
	}

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readWS(t, ws); msg.Type != WSTypeError {
		t.Errorf("reply type = %q, want %q", msg.Type, WSTypeError)
	}
}

func TestWebSocket_ClientCount(t *testing.T) {
	srv, _ := testServer(t, testOptions{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ws := dialWS(t, ts)
	readWS(t, ws)
	if got := srv.Hub().ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d, want 1", got)
	}

	ws.Close()
	waitFor(t, func() bool { return srv.Hub().ClientCount() == 0 })
}
