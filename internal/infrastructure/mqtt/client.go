package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/gramjyoti/microgrid-core/internal/infrastructure/config"
)

// Logger receives connection and handler diagnostics. logging.Logger
// satisfies it.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler is called for each message on a subscribed topic, on
// paho's delivery goroutine. A returned error is logged and the message
// is still acknowledged.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client is the site broker connection used for load commands and state.
//
// Subscriptions are replayed after every reconnect, and the retained
// gramjyoti/system/status topic tracks whether the core is online. Safe
// for concurrent use.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig

	connected atomic.Bool

	mu            sync.RWMutex
	subscriptions map[string]subscription
	logger        Logger
}

// Connect dials the broker with auto-reconnect and a retained offline
// Last Will, and gives up after defaultConnectTimeout.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := &Client{cfg: cfg, subscriptions: make(map[string]subscription)}

	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)
	opts.SetOnConnectHandler(func(pahomqtt.Client) { c.onConnect() })
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.onConnectionLost(err) })
	opts.SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
		c.log(func(l Logger) { l.Info("reconnecting to MQTT broker", "client_id", cfg.Broker.ClientID) })
	})

	c.client = pahomqtt.NewClient(opts)
	tok := c.client.Connect()
	if !tok.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// onConnect may not have run yet.
	c.connected.Store(true)
	return c, nil
}

func (c *Client) onConnect() {
	c.connected.Store(true)

	c.mu.RLock()
	for topic, sub := range c.subscriptions {
		c.client.Subscribe(topic, sub.qos, c.wrapHandler(sub.handler))
	}
	c.mu.RUnlock()

	c.announce(statusOnline, "")
}

func (c *Client) onConnectionLost(err error) {
	c.connected.Store(false)
	c.log(func(l Logger) { l.Warn("MQTT connection lost", "error", err) })
}

// announce publishes the core's presence without waiting for the broker.
func (c *Client) announce(status, reason string) pahomqtt.Token {
	payload := buildStatusPayload(c.cfg.Broker.ClientID, status, reason)
	return c.client.Publish(Topics{}.SystemStatus(), byte(c.cfg.QoS), true, payload) //nolint:gosec // qos validated by config
}

// Close marks the core offline and disconnects. It is a no-op on a client
// that never connected.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	if c.IsConnected() {
		c.announce(statusOffline, "graceful_shutdown").WaitTimeout(defaultPublishTimeout)
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	c.connected.Store(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker link is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected is nil-safe so callers can hold an optional *Client.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && c.connected.Load() && c.client.IsConnected()
}

// SetLogger installs a diagnostics logger. Without one, diagnostics are dropped.
func (c *Client) SetLogger(logger Logger) {
	c.mu.Lock()
	c.logger = logger
	c.mu.Unlock()
}

func (c *Client) getLogger() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

func (c *Client) log(fn func(Logger)) {
	if l := c.getLogger(); l != nil {
		fn(l)
	}
}

func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.deliver(handler, msg.Topic(), msg.Payload())
	}
}

// deliver runs handler, logging its error and recovering a panic so one
// bad command cannot stop the paho router.
func (c *Client) deliver(handler MessageHandler, topic string, payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.log(func(l Logger) { l.Error("MQTT handler panic", "topic", topic, "panic", r) })
		}
	}()

	if err := handler(topic, payload); err != nil {
		c.log(func(l Logger) { l.Warn("MQTT handler failed", "topic", topic, "error", err) })
	}
}

// await waits for a paho token and wraps any failure in sentinel.
func await(tok pahomqtt.Token, sentinel error) error {
	if !tok.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: no broker ack within %v", sentinel, defaultPublishTimeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return nil
}
