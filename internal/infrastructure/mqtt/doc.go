// Package mqtt provides MQTT client connectivity for RoomSense Core.
//
// This package manages:
//   - Connection to the camera cloud's MQTT broker with auto-reconnect
//   - Zone detection topic subscriptions with wildcard support
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// RoomSense consumes per-zone occupancy detections published by smart
// cameras. Each camera publishes one topic per configured zone:
//
//	/merakimv/{serial}/{zone_id}/raw_detections
//
// Subscriptions are tracked internally and restored automatically after a
// reconnect, so a broker blip never silently drops a camera feed.
//
// # Security Considerations
//
//   - TLS is required when talking to a remote broker (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to one camera's zone detections
//	err = client.Subscribe(mqtt.Topics{}.CameraDetections(serial), 1,
//	    func(topic string, payload []byte) error {
//	        serial, zoneID, ok := mqtt.ParseDetectionTopic(topic)
//	        ...
//	        return nil
//	    })
package mqtt
