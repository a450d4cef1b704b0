package scenario

import (
	"time"

	"github.com/google/uuid"
)

// TriggerState is the lifecycle of a one-shot scenario. Triggered is terminal
// for the process; there is no transition back to Idle.
type TriggerState int

const (
	// StateIdle means the scenario has not fired yet.
	StateIdle TriggerState = iota
	// StateTriggered means the scenario fired and will not fire again.
	StateTriggered
)

// String returns the state name for logging.
func (s TriggerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTriggered:
		return "triggered"
	default:
		return "unknown"
	}
}

// Message IDs on the endpoint wire. Inbound replies are classified by the
// same IDs.
const (
	// MessageEnter prompts the endpoint when someone enters the room.
	MessageEnter = 1
	// MessageLateResponse relays a bot reply back to the endpoint.
	MessageLateResponse = 2
	// MessageWarn nudges the endpoint when someone lingers too far away.
	MessageWarn = 3
	// MessageRecording asks the endpoint to confirm recording.
	MessageRecording = 4
)

// Scenario names used in execution records and logs.
const (
	ScenarioEnter     = "enter"
	ScenarioRecording = "recording"
	ScenarioWarn      = "warn"
)

// Execution outcomes.
const (
	// OutcomeDispatched means the trigger completed and its message was sent.
	OutcomeDispatched = "dispatched"
	// OutcomeNoMeeting means the chain resolved but the room had no meeting.
	OutcomeNoMeeting = "no_meeting"
	// OutcomeChainFailed means a lookup step failed; nothing was committed.
	OutcomeChainFailed = "chain_failed"
	// OutcomeDispatchFailed means the target could not be notified; nothing
	// was committed.
	OutcomeDispatchFailed = "dispatch_failed"
)

// Execution is one evaluated scenario trigger, persisted for inspection.
type Execution struct {
	ID           string
	Scenario     string
	CameraSerial string
	ZoneName     string
	Outcome      string
	Detail       *string
	ResolvedUser *string
	TriggeredAt  time.Time
	DurationMS   *int
}

// GenerateID creates a new UUID for an execution record.
func GenerateID() string {
	return uuid.New().String()
}

// Logger defines the logging interface used by the Engine.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
