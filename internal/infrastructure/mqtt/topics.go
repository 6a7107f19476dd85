package mqtt

import "fmt"

// Topic prefixes for the spinbridge MQTT surface.
//
// All camera topics use the flat scheme: spinbridge/{camera}/{stream}
// where {camera} is the configured frame id of the bridge instance.
const (
	// TopicPrefix is the base for all spinbridge topics.
	TopicPrefix = "spinbridge"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "spinbridge/system"
)

// Stream names used in camera topics and presence declarations.
const (
	StreamImage       = "image"
	StreamCalibration = "calibration"
	StreamMeta        = "meta"
	StreamStatus      = "status"
)

// Topics provides builders for spinbridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	imageTopic := topics.Image("cam0")
//	// Returns: "spinbridge/cam0/image"
type Topics struct{}

// Image returns the topic for full image publications from a camera.
//
// Example: spinbridge/cam0/image
func (Topics) Image(camera string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, camera, StreamImage)
}

// Calibration returns the topic for calibration info paired with each image.
//
// Example: spinbridge/cam0/calibration
func (Topics) Calibration(camera string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, camera, StreamCalibration)
}

// Meta returns the topic for lightweight per-frame metadata.
//
// Example: spinbridge/cam0/meta
func (Topics) Meta(camera string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, camera, StreamMeta)
}

// Status returns the topic for periodic throughput status reports.
//
// Example: spinbridge/cam0/status
func (Topics) Status(camera string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefix, camera, StreamStatus)
}

// Control returns the topic on which exposure/gain control commands arrive.
//
// Example: spinbridge/cam0/control
func (Topics) Control(camera string) string {
	return fmt.Sprintf("%s/%s/control", TopicPrefix, camera)
}

// SettingsSet returns the topic on which setting batches arrive.
//
// Example: spinbridge/cam0/settings/set
func (Topics) SettingsSet(camera string) string {
	return fmt.Sprintf("%s/%s/settings/set", TopicPrefix, camera)
}

// SettingsDeclared returns the topic carrying the retained declaration
// of every settable parameter (name and kind), published at startup so
// consumers can discover what the camera accepts.
//
// Example: spinbridge/cam0/settings/declared
func (Topics) SettingsDeclared(camera string) string {
	return fmt.Sprintf("%s/%s/settings/declared", TopicPrefix, camera)
}

// SettingsAck returns the topic on which setting batch acknowledgements
// are published.
//
// Example: spinbridge/cam0/settings/ack
func (Topics) SettingsAck(camera string) string {
	return fmt.Sprintf("%s/%s/settings/ack", TopicPrefix, camera)
}

// Presence returns the retained presence topic for a single consumer.
// Consumers announce which streams they want; the bridge skips building
// expensive image payloads when nobody has declared interest.
//
// Example: spinbridge/cam0/presence/viewer-01
func (Topics) Presence(camera, clientID string) string {
	return fmt.Sprintf("%s/%s/presence/%s", TopicPrefix, camera, clientID)
}

// AllPresence returns a pattern matching all presence declarations
// for a camera.
//
// Pattern: spinbridge/cam0/presence/+
func (Topics) AllPresence(camera string) string {
	return fmt.Sprintf("%s/%s/presence/+", TopicPrefix, camera)
}

// SystemStatus returns the bridge lifecycle status topic (also the LWT topic).
//
// Example: spinbridge/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
