package dispatch

import (
	"context"
	"encoding/json"
)

// payloadTag prefixes every endpoint payload so the endpoint's feedback
// handlers can distinguish our messages from other Message Send traffic.
const payloadTag = "roomsense:"

// EndpointTarget is the address and credentials of a conferencing endpoint.
type EndpointTarget struct {
	IP       string
	Username string
	Password string
}

// EndpointMessage is the structured payload delivered to an endpoint.
// ID identifies the scenario prompt (1 enter, 3 warn, 4 recording) or the
// bot late-response relay (2).
type EndpointMessage struct {
	ID             int    `json:"messageId"`
	Username       string `json:"username,omitempty"`
	First          bool   `json:"first,omitempty"`
	ResponseChoice int    `json:"responseChoice,omitempty"`
}

// Encode renders the message as the wire form sent in the Message Send
// command text: fixed tag + JSON.
func (m EndpointMessage) Encode() (string, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return payloadTag + string(data), nil
}

// BotMessage is the payload posted to the chat bot.
type BotMessage struct {
	RoomID     string   `json:"roomId"`
	Attendants []string `json:"attendants"`
}

// Notifier is the outbound interface the scenario engine depends on.
type Notifier interface {
	SendToEndpoint(ctx context.Context, target EndpointTarget, msg EndpointMessage) error
	SendToBot(ctx context.Context, msg BotMessage) error
}
