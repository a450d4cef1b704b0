package dispatch

import "errors"

var (
	// ErrEndpointUnreachable is returned when the conferencing endpoint could
	// not be reached or rejected the command.
	ErrEndpointUnreachable = errors.New("dispatch: endpoint unreachable")

	// ErrBotUnreachable is returned when the bot did not accept the message.
	ErrBotUnreachable = errors.New("dispatch: bot unreachable")

	// ErrNoTarget is returned when an endpoint message has no address to go to.
	ErrNoTarget = errors.New("dispatch: no endpoint address")
)
