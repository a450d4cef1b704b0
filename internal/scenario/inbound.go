package scenario

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/roomsense/roomsense-core/internal/dispatch"
	"github.com/roomsense/roomsense-core/internal/lookup"
)

// HandleEndpointReply classifies a reply from the conferencing endpoint by
// message ID.
//
// A "yes" to the enter prompt (id 1) starts the meeting session: the first
// such reply records the meeting start time, and the meeting's attendants are
// forwarded to the bot. A "yes" to the recording prompt (id 4) is an
// acknowledgement needing no further action. Unrecognised IDs are explicitly
// ignored.
func (e *Engine) HandleEndpointReply(ctx context.Context, messageID int, roomID, choice string) error {
	switch messageID {
	case MessageEnter:
		if !strings.EqualFold(choice, "yes") {
			e.logger.Debug("enter prompt declined", "room_id", roomID, "choice", choice)
			return nil
		}
		return e.startMeeting(ctx, roomID)

	case MessageRecording:
		if strings.EqualFold(choice, "yes") {
			e.logger.Info("recording confirmed", "room_id", roomID)
		}
		return nil

	default:
		e.logger.Debug("endpoint reply ignored", "message_id", messageID, "room_id", roomID)
		return nil
	}
}

// startMeeting loads the room's meeting, marks the session started (first
// confirmation wins), and forwards the attendants to the bot.
func (e *Engine) startMeeting(ctx context.Context, roomID string) error {
	meeting, err := e.resolver.RoomMeeting(ctx, roomID)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
		}
		return fmt.Errorf("%w: %w", ErrChainFailed, err)
	}
	if meeting == nil {
		return fmt.Errorf("%w: room %s", ErrNoActiveMeeting, roomID)
	}

	if e.state.StartMeeting(e.now()) {
		e.logger.Info("meeting started", "room_id", roomID, "meeting_id", meeting.ID)
	}

	attendants, err := e.resolver.MeetingAttendants(ctx, meeting.ID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	if err := e.notifier.SendToBot(ctx, dispatch.BotMessage{RoomID: roomID, Attendants: attendants}); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return nil
}

// HandleBotReply classifies a reply from the bot by message ID. Only the
// late-response relay (id 2) carries an action: look up the room's endpoint
// and forward the response. The choice string is parsed as an integer,
// defaulting to 0 when unparseable. Other IDs are ignored.
func (e *Engine) HandleBotReply(ctx context.Context, messageID int, roomID, name, choice string) error {
	if messageID != MessageLateResponse {
		e.logger.Debug("bot reply ignored", "message_id", messageID, "room_id", roomID)
		return nil
	}

	endpoint, err := e.resolver.RoomEndpoint(ctx, roomID)
	if err != nil {
		if errors.Is(err, lookup.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
		}
		return fmt.Errorf("%w: %w", ErrChainFailed, err)
	}

	responseChoice, err := strconv.Atoi(choice)
	if err != nil {
		responseChoice = 0
	}

	msg := dispatch.EndpointMessage{
		ID:             MessageLateResponse,
		Username:       name,
		ResponseChoice: responseChoice,
	}
	if err := e.notifier.SendToEndpoint(ctx, endpointTarget(endpoint), msg); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	e.logger.Info("late response relayed",
		"room_id", roomID,
		"username", name,
		"choice", responseChoice,
	)
	return nil
}
