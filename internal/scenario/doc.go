// Package scenario implements the event-driven workflows that react to
// camera occupancy transitions: Enter and Recording (one-shot prompts fired
// when someone appears in the Start zone) and Warn (a rate-limited, capped
// nudge fired while someone lingers in the Far zone during a meeting).
//
// The Engine is the single entry point for both inbound channels: detection
// events arriving over MQTT (HandleDetection) and replies arriving over HTTP
// from the endpoint and the bot (HandleEndpointReply, HandleBotReply). All
// scenario state lives in one State aggregate guarded by a mutex; triggers
// reserve the state machine first, perform their external lookups and
// dispatch, and commit only after the dispatch succeeded, so a failed chain
// leaves every counter and flag untouched.
//
// Every evaluated trigger is recorded in the scenario_executions table for
// later inspection; recording is best-effort and never blocks a trigger.
package scenario
