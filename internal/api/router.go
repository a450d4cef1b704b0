package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Health check
	r.Get("/health", s.handleHealth)

	// Inbound replies from the conferencing endpoint and the bot
	r.Post("/on-t10-message", s.handleEndpointMessage)
	r.Post("/on-bot-message", s.handleBotMessage)

	// Scenario toggles (idempotent, enable-only)
	r.Post("/enable-enter-events", s.handleEnableEnter)
	r.Post("/enable-warn-events", s.handleEnableWarn)
	r.Post("/enable-recording-events", s.handleEnableRecording)

	// Camera snapshot passthrough
	r.Get("/snapshot", s.handleSnapshot)

	// Scenario execution log
	r.Get("/executions", s.handleListExecutions)

	// Test-only: inject a detection event directly into the engine
	r.Post("/test/detection", s.handleTestDetection)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
