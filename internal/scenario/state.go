package scenario

import (
	"sync"
	"time"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
)

// State is the single aggregate holding all mutable scenario state for the
// process: the one-shot Enter/Recording machines, the warn bookkeeping, the
// meeting session, and the feature toggles. Handlers run concurrently from
// two inbound channels (MQTT detections and HTTP replies), so every access
// goes through the mutex.
//
// Triggers follow a reserve/commit discipline. Begin* reserves the state
// machine (blocking concurrent re-entry) without committing anything; the
// caller then runs its lookups and dispatch, and calls Commit* only after
// the dispatch succeeded, or Abort* to release the reservation with the
// state untouched. Either the whole trigger commits its side effects, or
// none of them do.
type State struct {
	mu sync.Mutex

	enter     TriggerState
	recording TriggerState

	// In-flight reservations. Cleared on commit or abort.
	enterInProgress     bool
	recordingInProgress bool
	warnInProgress      bool

	meetingStarted   bool
	meetingStartTime time.Time

	lastWarnTime time.Time
	warnCount    int
	warnedUsers  map[string]struct{}

	// Toggles can only be switched on, never off again.
	enterEnabled     bool
	warnEnabled      bool
	recordingEnabled bool

	warnThreshold    time.Duration
	warnCap          int
	fallbackUsername string
}

// NewState creates the aggregate with toggles and warn tuning taken from
// configuration.
func NewState(cfg config.ScenarioConfig) *State {
	return &State{
		warnedUsers:      make(map[string]struct{}),
		enterEnabled:     cfg.EnterEnabled,
		warnEnabled:      cfg.WarnEnabled,
		recordingEnabled: cfg.RecordingEnabled,
		warnThreshold:    time.Duration(cfg.WarnThreshold) * time.Second,
		warnCap:          cfg.WarnCap,
		fallbackUsername: cfg.FallbackUsername,
	}
}

// EnableEnter switches the enter scenario on. Idempotent; there is no off.
func (s *State) EnableEnter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterEnabled = true
}

// EnableWarn switches the warn scenario on. Idempotent; there is no off.
func (s *State) EnableWarn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnEnabled = true
}

// EnableRecording switches the recording scenario on. Idempotent.
func (s *State) EnableRecording() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordingEnabled = true
}

// BeginEnter reserves the enter trigger. Returns false when the scenario is
// disabled, already fired, or currently firing.
func (s *State) BeginEnter() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enterEnabled || s.enter != StateIdle || s.enterInProgress {
		return false
	}
	s.enterInProgress = true
	return true
}

// CommitEnter marks the enter scenario as fired and releases the reservation.
func (s *State) CommitEnter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enter = StateTriggered
	s.enterInProgress = false
}

// AbortEnter releases the reservation leaving the scenario idle, so a later
// qualifying event may try again.
func (s *State) AbortEnter() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enterInProgress = false
}

// BeginRecording reserves the recording trigger. Same contract as BeginEnter.
func (s *State) BeginRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recordingEnabled || s.recording != StateIdle || s.recordingInProgress {
		return false
	}
	s.recordingInProgress = true
	return true
}

// CommitRecording marks the recording scenario as fired.
func (s *State) CommitRecording() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = StateTriggered
	s.recordingInProgress = false
}

// AbortRecording releases the reservation leaving the scenario idle.
func (s *State) AbortRecording() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordingInProgress = false
}

// BeginWarn reserves a warn trigger. It refuses when the scenario is
// disabled, no meeting has started, a warn is already firing, the rate limit
// has not elapsed since the last committed warn, or the cap is reached.
// The triggering lock is what keeps two near-simultaneous far-zone events
// from both passing the rate-limit check before either updates lastWarnTime.
func (s *State) BeginWarn(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.warnEnabled || !s.meetingStarted || s.warnInProgress {
		return false
	}
	if !s.lastWarnTime.IsZero() && now.Sub(s.lastWarnTime) < s.warnThreshold {
		return false
	}
	if s.warnCount >= s.warnCap {
		return false
	}
	s.warnInProgress = true
	return true
}

// WarnDisplayName decides which name a reserved warn should address. When the
// resolved user has already been warned, the configured fallback second-party
// name is substituted. Also reports whether this would be the very first warn.
// Only valid between BeginWarn and Commit/AbortWarn.
func (s *State) WarnDisplayName(resolved string) (name string, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = resolved
	if _, warned := s.warnedUsers[resolved]; warned {
		name = s.fallbackUsername
	}
	return name, s.warnCount == 0
}

// CommitWarn records a successfully dispatched warning: increments the count,
// remembers the warned name, advances lastWarnTime, and releases the lock.
func (s *State) CommitWarn(name string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.warnCount++
	s.warnedUsers[name] = struct{}{}
	if now.After(s.lastWarnTime) {
		s.lastWarnTime = now
	}
	s.warnInProgress = false
}

// AbortWarn releases the triggering lock with no bookkeeping changes.
func (s *State) AbortWarn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnInProgress = false
}

// StartMeeting marks the meeting as started. The first call wins and records
// the start time; repeated deliveries are no-ops. Returns true only on the
// first call.
func (s *State) StartMeeting(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.meetingStarted {
		return false
	}
	s.meetingStarted = true
	s.meetingStartTime = now
	return true
}

// MeetingStarted reports whether a meeting-start reply has been seen.
func (s *State) MeetingStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetingStarted
}

// MeetingStartTime returns when the meeting started (zero if it has not).
func (s *State) MeetingStartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meetingStartTime
}

// EnterState returns the enter scenario's current state.
func (s *State) EnterState() TriggerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enter
}

// RecordingState returns the recording scenario's current state.
func (s *State) RecordingState() TriggerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// WarnCount returns the number of committed warnings.
func (s *State) WarnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warnCount
}

// LastWarnTime returns when the last warning was committed (zero if none).
func (s *State) LastWarnTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWarnTime
}

// WasWarned reports whether the given name has already received a warning.
func (s *State) WasWarned(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, warned := s.warnedUsers[name]
	return warned
}
