package mqtt

import "fmt"

// maxPayloadSize is the usual broker limit of 1 MiB.
const maxPayloadSize = 1 << 20

// Publish sends payload to topic and, for QoS 1 and 2, waits for the
// broker's acknowledgement.
//
// Load state, the aggregate and system status are retained so a fresh
// subscriber sees the current value. Commands and events never are.
//
//	err := client.Publish(mqtt.Topics{}.LoadState("water-pump"), []byte(`{"status":"on"}`), 1, true)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validateTopicQoS(topic, qos); err != nil {
		return err
	}
	if n := len(payload); n > maxPayloadSize {
		return fmt.Errorf("%w: %d byte payload exceeds %d", ErrPublishFailed, n, maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.client.Publish(topic, qos, retained, payload), ErrPublishFailed)
}

// PublishString is Publish for text payloads.
func (c *Client) PublishString(topic, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

func validateTopicQoS(topic string, qos byte) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	}
	return nil
}
