package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for RoomSense MQTT traffic.
//
// Camera detection topics follow the camera cloud's native scheme:
// /merakimv/{serial}/{zone_id}/raw_detections. System topics use the
// roomsense/{category} scheme.
const (
	// TopicPrefixDetections is the base for camera detection topics.
	// Scheme: /merakimv/{serial}/{zone_id}/raw_detections
	TopicPrefixDetections = "/merakimv"

	// TopicPrefixSystem is the base for RoomSense system topics.
	TopicPrefixSystem = "roomsense/system"

	// detectionsSuffix is the final segment of a detection topic.
	detectionsSuffix = "raw_detections"
)

// Topics provides builders for RoomSense MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	topic := topics.Detections("Q2GV-XXXX-YYYY", "1")
//	// Returns: "/merakimv/Q2GV-XXXX-YYYY/1/raw_detections"
type Topics struct{}

// Detections returns the detection topic for a specific camera zone.
//
// Example: /merakimv/Q2GV-XXXX-YYYY/1/raw_detections
func (Topics) Detections(serial, zoneID string) string {
	return fmt.Sprintf("%s/%s/%s/%s", TopicPrefixDetections, serial, zoneID, detectionsSuffix)
}

// CameraDetections returns a pattern matching all zone detections for one camera.
//
// Pattern: /merakimv/{serial}/+/raw_detections
func (Topics) CameraDetections(serial string) string {
	return fmt.Sprintf("%s/%s/+/%s", TopicPrefixDetections, serial, detectionsSuffix)
}

// AllDetections returns a pattern matching every camera's detection topics.
//
// Pattern: /merakimv/+/+/raw_detections
func (Topics) AllDetections() string {
	return fmt.Sprintf("%s/+/+/%s", TopicPrefixDetections, detectionsSuffix)
}

// SystemStatus returns the system status topic (LWT and online/offline).
//
// Example: roomsense/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// ParseDetectionTopic extracts the camera serial and zone id from a detection
// topic. It is the inverse of Detections().
//
// Parameters:
//   - topic: A concrete topic as delivered by the broker (no wildcards)
//
// Returns:
//   - serial: The camera serial
//   - zoneID: The zone identifier
//   - ok: false if the topic does not match the detection scheme
func ParseDetectionTopic(topic string) (serial, zoneID string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixDetections+"/")
	if !found {
		return "", "", false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != detectionsSuffix {
		return "", "", false
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
