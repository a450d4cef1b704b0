package occupancy

import (
	"fmt"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
)

// ZoneKey identifies one detection zone of one camera. It is the identity
// key for occupancy records and is immutable once observed.
type ZoneKey struct {
	Serial string
	ZoneID string
}

// String returns the key in topic-like form for logging.
func (k ZoneKey) String() string {
	return k.Serial + "/" + k.ZoneID
}

// Topology is the static camera/zone layout loaded from configuration.
// It is read-only after construction.
type Topology struct {
	// zones maps ZoneKey to the configured zone name.
	zones map[ZoneKey]string
	// serials preserves camera declaration order for subscription setup.
	serials []string
}

// NewTopology builds a Topology from the configured camera list.
func NewTopology(cameras []config.CameraConfig) *Topology {
	t := &Topology{
		zones:   make(map[ZoneKey]string),
		serials: make([]string, 0, len(cameras)),
	}
	for _, cam := range cameras {
		t.serials = append(t.serials, cam.Serial)
		for _, zone := range cam.Zones {
			t.zones[ZoneKey{Serial: cam.Serial, ZoneID: zone.ID}] = zone.Name
		}
	}
	return t
}

// ResolveZone maps a wire-level (camera serial, zone id) pair to its
// configured zone name.
//
// Returns:
//   - string: The zone name (e.g. "Start", "Far")
//   - error: ErrZoneNotFound if the camera or zone is not configured
func (t *Topology) ResolveZone(serial, zoneID string) (string, error) {
	name, ok := t.zones[ZoneKey{Serial: serial, ZoneID: zoneID}]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrZoneNotFound, serial, zoneID)
	}
	return name, nil
}

// Serials returns the configured camera serials in declaration order.
func (t *Topology) Serials() []string {
	out := make([]string, len(t.serials))
	copy(out, t.serials)
	return out
}

// ZoneCount returns the number of configured zones across all cameras.
func (t *Topology) ZoneCount() int {
	return len(t.zones)
}
