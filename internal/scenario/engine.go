package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roomsense/roomsense-core/internal/dispatch"
	"github.com/roomsense/roomsense-core/internal/lookup"
	"github.com/roomsense/roomsense-core/internal/occupancy"
)

// Zone labels that drive scenario evaluation. Zones carrying any other name
// are tracked but trigger nothing.
const (
	zoneStart = "Start"
	zoneFar   = "Far"
)

// maxTriggerTime is the hard limit for a single trigger evaluation, covering
// the whole identity chain plus the dispatch. Prevents a stalled vendor call
// from pinning the MQTT handler forever.
const maxTriggerTime = 60 * time.Second

// Identity is the transient result of the identity-resolution chain: who was
// seen and where their meeting's endpoint lives. Recomputed per trigger,
// never persisted.
type Identity struct {
	Username string
	RoomID   string
	Meeting  *lookup.Meeting
	Target   dispatch.EndpointTarget
}

// Engine evaluates occupancy transitions against the enabled scenarios and
// routes inbound endpoint/bot replies.
//
// Thread Safety: all Handle* methods are safe for concurrent use.
type Engine struct {
	tracker  *occupancy.Tracker
	topology *occupancy.Topology
	resolver lookup.Resolver
	notifier dispatch.Notifier
	state    *State
	repo     Repository
	logger   Logger

	// now is swappable so tests can control the warn rate-limit clock.
	now func() time.Time
}

// NewEngine creates a scenario engine.
//
// Parameters:
//   - tracker: per-zone occupancy counts and deltas
//   - topology: camera/zone configuration for name resolution
//   - resolver: the identity-resolution chain collaborators
//   - notifier: outbound endpoint and bot dispatch
//   - state: the shared scenario state aggregate
//   - repo: execution log persistence (may be nil to disable logging)
//   - logger: Logger instance
func NewEngine(tracker *occupancy.Tracker, topology *occupancy.Topology, resolver lookup.Resolver, notifier dispatch.Notifier, state *State, repo Repository, logger Logger) *Engine {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		tracker:  tracker,
		topology: topology,
		resolver: resolver,
		notifier: notifier,
		state:    state,
		repo:     repo,
		logger:   logger,
		now:      time.Now,
	}
}

// detectionPayload is the sensor message shape. Person is a pointer so a
// payload without counts.person can be told apart from a genuine zero.
type detectionPayload struct {
	Counts struct {
		Person *int `json:"person"`
	} `json:"counts"`
}

// HandleMessage decodes a raw detection payload and feeds it to
// HandleDetection. Malformed payloads are dropped; the sensor path is
// fire-and-forget, so the error return exists only for the caller's log line.
func (e *Engine) HandleMessage(ctx context.Context, serial, zoneID string, payload []byte) error {
	var detection detectionPayload
	if err := json.Unmarshal(payload, &detection); err != nil {
		return fmt.Errorf("malformed detection payload: %w", err)
	}
	if detection.Counts.Person == nil {
		return errors.New("malformed detection payload: missing counts.person")
	}

	e.HandleDetection(ctx, serial, zoneID, *detection.Counts.Person)
	return nil
}

// HandleDetection is the sensor-event entry point: updates the occupancy
// count for the zone and evaluates whichever scenarios the transition
// qualifies for. Configuration errors (unknown camera or zone) drop the
// event with a log line; scenario failures never propagate to the sensor
// source.
func (e *Engine) HandleDetection(ctx context.Context, serial, zoneID string, personCount int) {
	ctx, cancel := context.WithTimeout(ctx, maxTriggerTime)
	defer cancel()

	key := occupancy.ZoneKey{Serial: serial, ZoneID: zoneID}
	previous, delta := e.tracker.Update(key, personCount)

	if delta != 0 {
		e.logger.Debug("person count changed",
			"serial", serial,
			"zone_id", zoneID,
			"current", e.tracker.Count(key),
			"previous", previous,
		)
	}

	zoneName, err := e.topology.ResolveZone(serial, zoneID)
	if err != nil {
		e.logger.Warn("detection dropped: zone not in topology",
			"serial", serial,
			"zone_id", zoneID,
			"error", err,
		)
		return
	}

	switch zoneName {
	case zoneStart:
		if delta > 0 {
			e.evaluateEnter(ctx, serial, zoneName)
			e.evaluateRecording(ctx, serial, zoneName)
		}
	case zoneFar:
		if personCount > 0 {
			e.evaluateWarn(ctx, serial, zoneName)
		}
	}
}

// evaluateEnter fires the one-shot enter prompt: someone appeared in the
// Start zone. State commits only after the endpoint accepted the message.
func (e *Engine) evaluateEnter(ctx context.Context, serial, zoneName string) {
	if !e.state.BeginEnter() {
		return
	}
	started := e.now()

	identity, err := e.resolveIdentity(ctx, serial)
	if err != nil {
		e.state.AbortEnter()
		e.recordChainFailure(ctx, ScenarioEnter, serial, zoneName, started, err)
		return
	}

	msg := dispatch.EndpointMessage{ID: MessageEnter, Username: identity.Username}
	if err := e.notifier.SendToEndpoint(ctx, identity.Target, msg); err != nil {
		e.state.AbortEnter()
		e.logger.Error("enter dispatch failed", "serial", serial, "error", err)
		e.record(ctx, ScenarioEnter, serial, zoneName, OutcomeDispatchFailed, err.Error(), identity.Username, started)
		return
	}

	e.state.CommitEnter()
	e.logger.Info("enter scenario triggered",
		"serial", serial,
		"username", identity.Username,
		"target", identity.Target.IP,
	)
	e.record(ctx, ScenarioEnter, serial, zoneName, OutcomeDispatched, "", identity.Username, started)
}

// evaluateRecording fires the one-shot recording confirmation. Same trigger
// observation as enter, gated by its own toggle and one-shot flag.
func (e *Engine) evaluateRecording(ctx context.Context, serial, zoneName string) {
	if !e.state.BeginRecording() {
		return
	}
	started := e.now()

	identity, err := e.resolveIdentity(ctx, serial)
	if err != nil {
		e.state.AbortRecording()
		e.recordChainFailure(ctx, ScenarioRecording, serial, zoneName, started, err)
		return
	}

	msg := dispatch.EndpointMessage{ID: MessageRecording, Username: identity.Username}
	if err := e.notifier.SendToEndpoint(ctx, identity.Target, msg); err != nil {
		e.state.AbortRecording()
		e.logger.Error("recording dispatch failed", "serial", serial, "error", err)
		e.record(ctx, ScenarioRecording, serial, zoneName, OutcomeDispatchFailed, err.Error(), identity.Username, started)
		return
	}

	e.state.CommitRecording()
	e.logger.Info("recording scenario triggered",
		"serial", serial,
		"username", identity.Username,
		"target", identity.Target.IP,
	)
	e.record(ctx, ScenarioRecording, serial, zoneName, OutcomeDispatched, "", identity.Username, started)
}

// evaluateWarn fires a rate-limited warning: someone is lingering in the Far
// zone during a meeting. The warn bookkeeping (count, warned names, last warn
// time) commits only after a successful dispatch, so a failed chain leaves
// the rate limit and cap exactly where they were.
func (e *Engine) evaluateWarn(ctx context.Context, serial, zoneName string) {
	if !e.state.BeginWarn(e.now()) {
		return
	}
	started := e.now()

	identity, err := e.resolveIdentity(ctx, serial)
	if err != nil {
		e.state.AbortWarn()
		e.recordChainFailure(ctx, ScenarioWarn, serial, zoneName, started, err)
		return
	}

	name, first := e.state.WarnDisplayName(identity.Username)
	msg := dispatch.EndpointMessage{ID: MessageWarn, Username: name, First: first}
	if err := e.notifier.SendToEndpoint(ctx, identity.Target, msg); err != nil {
		e.state.AbortWarn()
		e.logger.Error("warn dispatch failed", "serial", serial, "error", err)
		e.record(ctx, ScenarioWarn, serial, zoneName, OutcomeDispatchFailed, err.Error(), name, started)
		return
	}

	e.state.CommitWarn(name, e.now())
	e.logger.Info("warn scenario triggered",
		"serial", serial,
		"username", name,
		"first", first,
		"warn_count", e.state.WarnCount(),
	)
	e.record(ctx, ScenarioWarn, serial, zoneName, OutcomeDispatched, "", name, started)
}

// resolveIdentity runs the sequential lookup chain: network → snapshot →
// identify → room → endpoint → meeting. Short-circuits on the first failure;
// the wrapped error names the failing step. Returns ErrNoActiveMeeting when
// everything resolved but the room has no current meeting.
func (e *Engine) resolveIdentity(ctx context.Context, serial string) (*Identity, error) {
	networkID, err := e.resolver.CameraNetwork(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	snapshot, err := e.resolver.TakeSnapshot(ctx, networkID, serial)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	username, err := e.resolver.IdentifyPerson(ctx, snapshot.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	roomID, err := e.resolver.CameraRoom(ctx, serial)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	endpoint, err := e.resolver.RoomEndpoint(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	meeting, err := e.resolver.RoomMeeting(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrChainFailed, err)
	}
	if meeting == nil {
		return nil, ErrNoActiveMeeting
	}

	return &Identity{
		Username: username,
		RoomID:   roomID,
		Meeting:  meeting,
		Target:   endpointTarget(endpoint),
	}, nil
}

// recordChainFailure logs and records an aborted trigger. A room without a
// current meeting is a benign outcome, anything else is a chain failure.
func (e *Engine) recordChainFailure(ctx context.Context, scenarioName, serial, zoneName string, started time.Time, err error) {
	if errors.Is(err, ErrNoActiveMeeting) {
		e.logger.Debug("trigger skipped: no active meeting", "scenario", scenarioName, "serial", serial)
		e.record(ctx, scenarioName, serial, zoneName, OutcomeNoMeeting, "", "", started)
		return
	}
	e.logger.Warn("trigger aborted: identity chain failed",
		"scenario", scenarioName,
		"serial", serial,
		"error", err,
	)
	e.record(ctx, scenarioName, serial, zoneName, OutcomeChainFailed, err.Error(), "", started)
}

// record persists an execution row. Best-effort: a failed insert is logged
// and the trigger outcome stands.
func (e *Engine) record(ctx context.Context, scenarioName, serial, zoneName, outcome, detail, resolvedUser string, started time.Time) {
	if e.repo == nil {
		return
	}

	duration := int(e.now().Sub(started).Milliseconds())
	exec := &Execution{
		ID:           GenerateID(),
		Scenario:     scenarioName,
		CameraSerial: serial,
		ZoneName:     zoneName,
		Outcome:      outcome,
		TriggeredAt:  started.UTC(),
		DurationMS:   &duration,
	}
	if detail != "" {
		exec.Detail = &detail
	}
	if resolvedUser != "" {
		exec.ResolvedUser = &resolvedUser
	}

	if err := e.repo.CreateExecution(ctx, exec); err != nil {
		e.logger.Error("failed to record scenario execution", "error", err)
	}
}

// endpointTarget converts a resolved endpoint into a dispatch target.
func endpointTarget(endpoint lookup.Endpoint) dispatch.EndpointTarget {
	return dispatch.EndpointTarget{
		IP:       endpoint.IP,
		Username: endpoint.Username,
		Password: endpoint.Password,
	}
}
