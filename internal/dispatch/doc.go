// Package dispatch sends scenario notifications to their two destinations:
// the room's conferencing endpoint (an xAPI command over WebSocket) and the
// chat bot (a JSON POST).
//
// Endpoint payloads are serialized as the fixed protocol tag "roomsense:"
// followed by JSON, wrapped in a Message Send command so the endpoint's macro
// runtime can pick them apart. Transport failures are wrapped sentinels; the
// caller decides whether to retry, this package never retries on its own.
package dispatch
