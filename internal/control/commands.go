package control

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/gramjyoti/microgrid-core/internal/device"
	"github.com/gramjyoti/microgrid-core/internal/infrastructure/mqtt"
)

// Command actions accepted over MQTT.
const (
	ActionToggle            = "toggle"
	ActionSetMode           = "set_mode"
	ActionFlipMode          = "flip_mode"
	ActionEmergencyShutdown = "emergency_shutdown"
)

// Command is the JSON payload of a load or emergency command.
//
//	{"action":"toggle","status":"on"}
//	{"action":"set_mode","mode":"auto"}
//	{"action":"flip_mode"}
//	{"action":"emergency_shutdown"}
type Command struct {
	Action string        `json:"action"`
	Status device.Status `json:"status,omitempty"`
	Mode   device.Mode   `json:"mode,omitempty"`
}

// Subscriber is the subset of the MQTT client used for command intake.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// CommandHandler executes MQTT commands against a Controller.
//
// Outcomes are reported through the controller's notifiers like any other
// request, so a command publisher learns the result from the load event
// topic.
type CommandHandler struct {
	ctrl   *Controller
	logger Logger

	baseCtx context.Context

	mu      sync.Mutex // guards stopped and wg.Add
	stopped bool
	wg      sync.WaitGroup
}

// NewCommandHandler creates a CommandHandler for ctrl. Commands received
// are executed in the background under ctx and refused once it is done.
func NewCommandHandler(ctx context.Context, ctrl *Controller, logger Logger) *CommandHandler {
	if logger == nil {
		logger = noopLogger{}
	}
	return &CommandHandler{ctrl: ctrl, logger: logger, baseCtx: ctx}
}

// Subscribe registers the load and emergency command topics on sub.
func (h *CommandHandler) Subscribe(sub Subscriber, qos byte) error {
	topics := mqtt.Topics{}
	if err := sub.Subscribe(topics.AllLoadCommands(), qos, h.dispatch); err != nil {
		return fmt.Errorf("subscribing to load commands: %w", err)
	}
	if err := sub.Subscribe(topics.EmergencyCommand(), qos, h.dispatch); err != nil {
		return fmt.Errorf("subscribing to emergency command: %w", err)
	}
	return nil
}

// Wait stops accepting commands and blocks until background commands
// have finished.
func (h *CommandHandler) Wait() {
	h.mu.Lock()
	h.stopped = true
	h.mu.Unlock()

	h.wg.Wait()
}

// dispatch validates a message synchronously and executes it in the
// background, since a toggle waits out the control latency.
func (h *CommandHandler) dispatch(topic string, payload []byte) error {
	if _, _, err := parseCommand(topic, payload); err != nil {
		return err
	}

	h.mu.Lock()
	if h.stopped || h.baseCtx.Err() != nil {
		h.mu.Unlock()
		return fmt.Errorf("%w: dropping command on %s", ErrCommandsStopped, topic)
	}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		if err := h.Handle(h.baseCtx, topic, payload); err != nil {
			h.logger.Debug("mqtt command not applied", "topic", topic, "error", err)
		}
	}()
	return nil
}

// Handle parses and executes a single command.
func (h *CommandHandler) Handle(ctx context.Context, topic string, payload []byte) error {
	deviceID, cmd, err := parseCommand(topic, payload)
	if err != nil {
		return err
	}

	ctx = WithSource(ctx, SourceMQTT)

	switch cmd.Action {
	case ActionEmergencyShutdown:
		changed := h.ctrl.EmergencyShutdown(ctx)
		h.logger.Info("emergency shutdown via mqtt", "changed", changed)
		return nil
	case ActionToggle:
		_, err = h.ctrl.Toggle(ctx, deviceID, cmd.Status)
	case ActionSetMode:
		_, err = h.ctrl.SetMode(ctx, deviceID, cmd.Mode)
	case ActionFlipMode:
		_, err = h.ctrl.FlipMode(ctx, deviceID)
	}
	return err
}

// parseCommand extracts the target device and command from a message.
// The device ID is empty for emergency commands.
func parseCommand(topic string, payload []byte) (string, Command, error) {
	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return "", cmd, fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}

	topics := mqtt.Topics{}
	if topic == topics.EmergencyCommand() {
		if cmd.Action != ActionEmergencyShutdown {
			return "", cmd, fmt.Errorf("%w: action %q not allowed on %s", ErrInvalidCommand, cmd.Action, topic)
		}
		return "", cmd, nil
	}

	deviceID, ok := strings.CutPrefix(topic, topics.LoadCommand(""))
	if !ok || deviceID == "" || strings.Contains(deviceID, "/") {
		return "", cmd, fmt.Errorf("%w: unexpected topic %q", ErrInvalidCommand, topic)
	}

	switch cmd.Action {
	case ActionToggle:
		if cmd.Status == "" {
			return "", cmd, fmt.Errorf("%w: toggle requires status", ErrInvalidCommand)
		}
	case ActionSetMode:
		if cmd.Mode == "" {
			return "", cmd, fmt.Errorf("%w: set_mode requires mode", ErrInvalidCommand)
		}
	case ActionFlipMode:
	default:
		return "", cmd, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, cmd.Action)
	}

	return deviceID, cmd, nil
}
