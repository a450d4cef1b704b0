package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roomsense/roomsense-core/internal/occupancy"
	"github.com/roomsense/roomsense-core/internal/scenario"
)

// endpointMessageRequest is the reply body posted by the conferencing
// endpoint's macro.
type endpointMessageRequest struct {
	MessageID *int   `json:"messageId"`
	RoomID    string `json:"roomId"`
	Choice    string `json:"choice"`
}

// handleEndpointMessage routes a reply from the conferencing endpoint.
func (s *Server) handleEndpointMessage(w http.ResponseWriter, r *http.Request) {
	var req endpointMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.MessageID == nil {
		writeBadRequest(w, "messageId is required")
		return
	}
	if req.RoomID == "" {
		writeBadRequest(w, "roomId is required")
		return
	}

	err := s.engine.HandleEndpointReply(r.Context(), *req.MessageID, req.RoomID, req.Choice)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeOK(w)
}

// botMessageRequest is the reply body posted by the bot. Time carries the
// user's response choice as a string.
type botMessageRequest struct {
	MessageID *int   `json:"messageId"`
	RoomID    string `json:"roomId"`
	Name      string `json:"Name"`
	Time      string `json:"time"`
}

// handleBotMessage routes a reply from the bot.
func (s *Server) handleBotMessage(w http.ResponseWriter, r *http.Request) {
	var req botMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.MessageID == nil {
		writeBadRequest(w, "messageId is required")
		return
	}
	if req.RoomID == "" {
		writeBadRequest(w, "roomId is required")
		return
	}

	err := s.engine.HandleBotReply(r.Context(), *req.MessageID, req.RoomID, req.Name, req.Time)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeOK(w)
}

// writeEngineError maps engine errors onto the command error surface:
// unknown rooms and missing meetings are the caller's problem (404),
// upstream lookup or dispatch failures are a gateway problem (502).
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scenario.ErrUnknownRoom):
		writeNotFound(w, "unknown room")
	case errors.Is(err, scenario.ErrNoActiveMeeting):
		writeError(w, http.StatusNotFound, ErrCodeNoMeeting, "no active meeting for room")
	case errors.Is(err, scenario.ErrChainFailed), errors.Is(err, scenario.ErrDispatchFailed):
		writeBadGateway(w, err.Error())
	default:
		s.logger.Error("command handler error", "error", err)
		writeInternalError(w, "internal server error")
	}
}

// handleEnableEnter switches the enter scenario on. Idempotent.
func (s *Server) handleEnableEnter(w http.ResponseWriter, _ *http.Request) {
	s.state.EnableEnter()
	s.logger.Info("enter events enabled")
	writeOK(w)
}

// handleEnableWarn switches the warn scenario on. Idempotent.
func (s *Server) handleEnableWarn(w http.ResponseWriter, _ *http.Request) {
	s.state.EnableWarn()
	s.logger.Info("warn events enabled")
	writeOK(w)
}

// handleEnableRecording switches the recording scenario on. Idempotent.
func (s *Server) handleEnableRecording(w http.ResponseWriter, _ *http.Request) {
	s.state.EnableRecording()
	s.logger.Info("recording events enabled")
	writeOK(w)
}

// snapshotFallback is served when the vendor declines the snapshot request,
// so the caller always gets a usable body.
var snapshotFallback = map[string]string{
	"url":    "https://spn4.meraki.com/stream/jpeg/snapshot/b2d123asdf423qd22d2",
	"expiry": "Access to the image will expire one day",
}

// handleSnapshot requests a fresh snapshot from the first configured camera
// and passes the vendor response through. Anything but an accepted request
// yields the canned fallback body.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	serials := s.topology.Serials()
	if s.snapshots == nil || len(serials) == 0 {
		writeJSON(w, http.StatusOK, snapshotFallback)
		return
	}
	serial := serials[0]

	networkID, err := s.snapshots.CameraNetwork(r.Context(), serial)
	if err != nil {
		writeBadGateway(w, "camera network lookup failed")
		return
	}

	status, body, err := s.snapshots.RawSnapshot(r.Context(), networkID, serial)
	if err != nil {
		writeBadGateway(w, "snapshot request failed")
		return
	}
	if status != http.StatusAccepted {
		s.logger.Warn("snapshot declined by vendor, serving fallback", "status", status)
		writeJSON(w, http.StatusOK, snapshotFallback)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(body)
}

// handleListExecutions returns the most recent scenario executions.
func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	if s.execRepo == nil {
		writeJSON(w, http.StatusOK, []scenario.Execution{})
		return
	}

	executions, err := s.execRepo.ListExecutions(r.Context(), 50)
	if err != nil {
		s.logger.Error("failed to list executions", "error", err)
		writeInternalError(w, "failed to list executions")
		return
	}
	if executions == nil {
		executions = []scenario.Execution{}
	}
	writeJSON(w, http.StatusOK, executions)
}

// testDetectionRequest injects a detection event as if it had arrived from
// a camera.
type testDetectionRequest struct {
	Serial      string `json:"serial"`
	ZoneID      string `json:"zoneId"`
	PersonCount *int   `json:"personCount"`
}

// handleTestDetection invokes the scenario entry point directly, bypassing
// MQTT. Exists for demos and integration testing.
func (s *Server) handleTestDetection(w http.ResponseWriter, r *http.Request) {
	var req testDetectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Serial == "" || req.ZoneID == "" {
		writeBadRequest(w, "serial and zoneId are required")
		return
	}
	if req.PersonCount == nil {
		writeBadRequest(w, "personCount is required")
		return
	}

	if _, err := s.topology.ResolveZone(req.Serial, req.ZoneID); err != nil {
		if errors.Is(err, occupancy.ErrZoneNotFound) {
			writeNotFound(w, "unknown camera or zone")
			return
		}
		writeInternalError(w, "zone resolution failed")
		return
	}

	// Acknowledge before evaluating. Like the MQTT sensor path the trigger is
	// fire-and-forget, and a slow identity chain can outlast the server's
	// write timeout. The detached context lets the trigger outlive the client.
	go s.engine.HandleDetection(context.WithoutCancel(r.Context()), req.Serial, req.ZoneID, *req.PersonCount)
	writeOK(w)
}
