package occupancy

import "sync"

// Tracker maintains the current person count per zone.
//
// Counts are the last value seen for each key; entries are never removed,
// so the map grows with the number of distinct zones observed (bounded by
// the configured topology in practice).
//
// Thread Safety: all methods are safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	counts map[ZoneKey]int
}

// NewTracker creates an empty occupancy tracker.
func NewTracker() *Tracker {
	return &Tracker{
		counts: make(map[ZoneKey]int),
	}
}

// Update records a new person count for a zone and reports the transition.
//
// Unknown keys start at zero. Negative counts are clamped to zero (a camera
// can never report negative occupancy; a negative value is a decoding bug
// upstream).
//
// Parameters:
//   - key: The zone identity
//   - count: The new person count reported by the camera
//
// Returns:
//   - previous: The count stored before this update (0 if the key is new)
//   - delta: count - previous
func (t *Tracker) Update(key ZoneKey, count int) (previous, delta int) {
	if count < 0 {
		count = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	previous = t.counts[key]
	t.counts[key] = count
	return previous, count - previous
}

// Count returns the last stored count for a zone (0 if never seen).
func (t *Tracker) Count(key ZoneKey) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[key]
}

// ZonesSeen returns the number of distinct zones observed so far.
func (t *Tracker) ZonesSeen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}
