package mqtt

import (
	"context"
	"errors"
	"testing"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "roomsense-test",
			TLS:      false,
		},
		Auth: config.MQTTAuthConfig{
			Username: "",
			Password: "",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Offline Client Behaviour
// =============================================================================

func TestCloseNil(t *testing.T) {
	c := &Client{}

	if err := c.Close(); err != nil {
		t.Errorf("Close() on unconnected client = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if c.IsConnected() {
		t.Error("IsConnected() = true for a client that never connected")
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	c := &Client{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() with cancelled context expected error")
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	err := c.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	c := &Client{}

	err := c.Publish("", []byte("payload"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	c := &Client{}

	err := c.Publish("roomsense/test", []byte("payload"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	err := c.Publish(Topics{}.SystemStatus(), []byte("payload"), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	c := &Client{}

	err := c.Subscribe("", 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Subscribe() = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	c := &Client{}

	err := c.Subscribe(Topics{}.AllDetections(), 1, nil)
	if !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Subscribe() = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	err := c.Subscribe(Topics{}.AllDetections(), 1, func(string, []byte) error { return nil })
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Subscribe() = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeDisconnected(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	err := c.Unsubscribe(Topics{}.AllDetections())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Unsubscribe() = %v, want ErrNotConnected", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if got := c.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if c.HasSubscription(Topics{}.CameraDetections("Q2GV-0001")) {
		t.Error("HasSubscription() = true for topic never subscribed")
	}
}

// =============================================================================
// Topic Builders
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		build    func() string
		expected string
	}{
		{
			name: "Detections",
			build: func() string {
				return Topics{}.Detections("Q2GV-XXXX-YYYY", "1")
			},
			expected: "/merakimv/Q2GV-XXXX-YYYY/1/raw_detections",
		},
		{
			name: "CameraDetections",
			build: func() string {
				return Topics{}.CameraDetections("Q2GV-XXXX-YYYY")
			},
			expected: "/merakimv/Q2GV-XXXX-YYYY/+/raw_detections",
		},
		{
			name: "AllDetections",
			build: func() string {
				return Topics{}.AllDetections()
			},
			expected: "/merakimv/+/+/raw_detections",
		},
		{
			name: "SystemStatus",
			build: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "roomsense/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build(); got != tt.expected {
				t.Errorf("topic = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseDetectionTopic(t *testing.T) {
	tests := []struct {
		name       string
		topic      string
		wantSerial string
		wantZone   string
		wantOK     bool
	}{
		{
			name:       "valid topic",
			topic:      "/merakimv/Q2GV-XXXX-YYYY/1/raw_detections",
			wantSerial: "Q2GV-XXXX-YYYY",
			wantZone:   "1",
			wantOK:     true,
		},
		{
			name:   "wrong prefix",
			topic:  "/othercam/Q2GV-XXXX-YYYY/1/raw_detections",
			wantOK: false,
		},
		{
			name:   "missing zone segment",
			topic:  "/merakimv/Q2GV-XXXX-YYYY/raw_detections",
			wantOK: false,
		},
		{
			name:   "wrong suffix",
			topic:  "/merakimv/Q2GV-XXXX-YYYY/1/light_events",
			wantOK: false,
		},
		{
			name:   "empty serial",
			topic:  "/merakimv//1/raw_detections",
			wantOK: false,
		},
		{
			name:   "empty topic",
			topic:  "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serial, zone, ok := ParseDetectionTopic(tt.topic)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if serial != tt.wantSerial {
				t.Errorf("serial = %q, want %q", serial, tt.wantSerial)
			}
			if zone != tt.wantZone {
				t.Errorf("zone = %q, want %q", zone, tt.wantZone)
			}
		})
	}
}
