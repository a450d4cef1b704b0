// Package api implements the HTTP command surface for RoomSense Core.
//
// This package provides:
//   - Inbound reply endpoints for the conferencing endpoint and the bot
//   - Scenario toggle endpoints (enable enter/warn/recording events)
//   - A camera snapshot passthrough with canned fallback
//   - A test route that injects detection events directly into the engine
//   - Middleware stack (request ID, logging, recovery, body size limits)
//
// # Architecture
//
// The server is one of the two inbound channels into the scenario engine: the
// endpoint and the bot post their replies here, while sensor detections arrive
// over MQTT. Handlers validate and decode, then hand off to the engine; all
// scenario state lives behind the engine's own locking.
//
// # Error Surface
//
// Unlike the fire-and-forget sensor path, command handlers answer with
// distinct status codes: 400 for malformed bodies, 404 for unknown rooms or
// cameras (and rooms without a current meeting), 502 when an upstream lookup
// or dispatch fails, and 200 {"status":"ok"} otherwise.
package api
