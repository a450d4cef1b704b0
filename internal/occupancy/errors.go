package occupancy

import "errors"

// Domain errors for the occupancy package.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrZoneNotFound is returned when a (camera, zone) pair is absent from
	// the configured topology. This is a configuration error: the triggering
	// event should be logged and dropped, never retried.
	ErrZoneNotFound = errors.New("occupancy: zone not found in topology")
)
