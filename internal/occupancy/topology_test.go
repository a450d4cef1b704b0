package occupancy

import (
	"errors"
	"testing"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
)

func testCameras() []config.CameraConfig {
	return []config.CameraConfig{
		{
			Serial: "Q2GV-TEST-0001",
			Zones: []config.ZoneConfig{
				{ID: "1", Name: "Start"},
				{ID: "2", Name: "Far"},
			},
		},
		{
			Serial: "Q2GV-TEST-0002",
			Zones: []config.ZoneConfig{
				{ID: "1", Name: "Start"},
			},
		},
	}
}

func TestTopology_ResolveZone(t *testing.T) {
	topo := NewTopology(testCameras())

	name, err := topo.ResolveZone("Q2GV-TEST-0001", "2")
	if err != nil {
		t.Fatalf("ResolveZone() error = %v", err)
	}
	if name != "Far" {
		t.Errorf("ResolveZone() = %q, want %q", name, "Far")
	}
}

func TestTopology_ResolveZoneUnknown(t *testing.T) {
	topo := NewTopology(testCameras())

	tests := []struct {
		name   string
		serial string
		zoneID string
	}{
		{"unknown serial", "Q2GV-UNKNOWN", "1"},
		{"unknown zone on known serial", "Q2GV-TEST-0001", "9"},
		{"zone belongs to other camera", "Q2GV-TEST-0002", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := topo.ResolveZone(tt.serial, tt.zoneID)
			if !errors.Is(err, ErrZoneNotFound) {
				t.Errorf("ResolveZone() error = %v, want ErrZoneNotFound", err)
			}
		})
	}
}

func TestTopology_Serials(t *testing.T) {
	topo := NewTopology(testCameras())

	serials := topo.Serials()
	if len(serials) != 2 {
		t.Fatalf("Serials() returned %d entries, want 2", len(serials))
	}

	// Returned slice is a copy; mutating it must not affect the topology.
	serials[0] = "mutated"
	if topo.Serials()[0] == "mutated" {
		t.Error("Serials() exposed internal slice")
	}
}

func TestTopology_ZoneCount(t *testing.T) {
	topo := NewTopology(testCameras())
	if got := topo.ZoneCount(); got != 3 {
		t.Errorf("ZoneCount() = %d, want 3", got)
	}
}
