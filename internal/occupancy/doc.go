// Package occupancy tracks per-zone person counts from camera detections.
//
// It holds two pieces of state:
//
//   - Topology: the static camera/zone layout from configuration, used to
//     translate wire-level zone ids into scenario-facing zone names
//     ("Start", "Far").
//   - Tracker: the live person count per (camera, zone) key, updated on every
//     detection event and used to compute count deltas.
//
// # Thread Safety
//
// Tracker is safe for concurrent use from multiple goroutines. Topology is
// immutable after construction and needs no synchronisation.
//
// # Usage
//
//	topo := occupancy.NewTopology(cfg.Cameras)
//	tracker := occupancy.NewTracker()
//
//	name, err := topo.ResolveZone(serial, zoneID)
//	if err != nil {
//	    // unknown camera or zone: configuration error, drop the event
//	}
//	prev, delta := tracker.Update(occupancy.ZoneKey{Serial: serial, ZoneID: zoneID}, count)
package occupancy
