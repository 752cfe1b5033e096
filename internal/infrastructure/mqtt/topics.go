package mqtt

import "fmt"

// Topic prefixes for the Gram Jyoti MQTT hierarchy.
//
// Load topics use the flat scheme gramjyoti/{category}/load/{device_id}:
//
//	gramjyoti/state/load/water-pump     retained device state
//	gramjyoti/event/load/water-pump     control outcomes
//	gramjyoti/command/load/water-pump   inbound commands
const (
	// TopicPrefix is the root of every Gram Jyoti topic.
	TopicPrefix = "gramjyoti"

	// TopicPrefixCore is the base for site-wide core topics.
	TopicPrefixCore = "gramjyoti/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "gramjyoti/system"
)

// Topics provides builders for Gram Jyoti MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.LoadState("water-pump")
//	// Returns: "gramjyoti/state/load/water-pump"
type Topics struct{}

// =============================================================================
// Load Topics
// =============================================================================

// LoadState returns the retained state topic for a load.
//
// Example: gramjyoti/state/load/water-pump
func (Topics) LoadState(deviceID string) string {
	return fmt.Sprintf("%s/state/load/%s", TopicPrefix, deviceID)
}

// LoadEvent returns the control event topic for a load.
//
// Example: gramjyoti/event/load/water-pump
func (Topics) LoadEvent(deviceID string) string {
	return fmt.Sprintf("%s/event/load/%s", TopicPrefix, deviceID)
}

// LoadCommand returns the command topic for a load. An empty ID yields
// the topic prefix shared by all load commands.
//
// Example: gramjyoti/command/load/water-pump
func (Topics) LoadCommand(deviceID string) string {
	return fmt.Sprintf("%s/command/load/%s", TopicPrefix, deviceID)
}

// EmergencyCommand returns the site-wide emergency command topic.
func (Topics) EmergencyCommand() string {
	return TopicPrefix + "/command/emergency"
}

// =============================================================================
// Core Topics
// =============================================================================

// CoreAggregate returns the retained load aggregate topic.
func (Topics) CoreAggregate() string {
	return TopicPrefixCore + "/aggregate"
}

// CoreEvent returns the topic for site-wide events.
//
// Example: gramjyoti/core/event/emergency_shutdown
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the system status topic (online/offline, LWT).
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// =============================================================================
// Wildcard Subscriptions
// =============================================================================

// AllLoadCommands returns a pattern matching every load command topic.
func (Topics) AllLoadCommands() string {
	return TopicPrefix + "/command/load/+"
}

// AllLoadStates returns a pattern matching every load state topic.
func (Topics) AllLoadStates() string {
	return TopicPrefix + "/state/load/+"
}

// AllLoadEvents returns a pattern matching every load event topic.
func (Topics) AllLoadEvents() string {
	return TopicPrefix + "/event/load/+"
}

// AllTopics returns a pattern matching all Gram Jyoti topics.
// Use with caution, this can be high volume.
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}
