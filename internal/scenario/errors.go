package scenario

import "errors"

// Domain errors for the scenario package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, scenario.ErrNoActiveMeeting) {
//	    // benign: the room simply has no meeting right now
//	}
var (
	// ErrChainFailed is returned when a step of the identity-resolution chain
	// fails. The wrapped error names the failing step.
	ErrChainFailed = errors.New("scenario: identity chain failed")

	// ErrNoActiveMeeting is returned when a room has no current meeting.
	// Triggers treat this as a benign no-op, not a failure.
	ErrNoActiveMeeting = errors.New("scenario: no active meeting")

	// ErrDispatchFailed is returned when the resolved target could not be
	// notified. State is not committed when dispatch fails.
	ErrDispatchFailed = errors.New("scenario: dispatch failed")

	// ErrUnknownRoom is returned by inbound handlers when the referenced room
	// cannot be resolved.
	ErrUnknownRoom = errors.New("scenario: unknown room")
)
