package dispatch

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
)

// BotClient posts notifications to the chat bot's inbound webhook.
type BotClient struct {
	http   *resty.Client
	url    string
	logger *logging.Logger
}

// NewBotClient creates a bot client for the configured webhook URL.
func NewBotClient(cfg config.BotConfig, logger *logging.Logger) *BotClient {
	httpClient := resty.New().
		SetTimeout(sendTimeout).
		SetHeader("Content-Type", "application/json")

	return &BotClient{
		http:   httpClient,
		url:    cfg.URL,
		logger: logger.With("component", "dispatch.bot"),
	}
}

// Send posts the message to the bot. Any status outside 2xx counts as a
// delivery failure.
func (c *BotClient) Send(ctx context.Context, msg BotMessage) error {
	if c.url == "" {
		return fmt.Errorf("%w: no bot URL configured", ErrBotUnreachable)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(msg).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBotUnreachable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrBotUnreachable, resp.StatusCode())
	}

	c.logger.Debug("bot message delivered",
		"room_id", msg.RoomID,
		"attendants", len(msg.Attendants),
	)
	return nil
}

// Dispatcher combines the endpoint and bot clients behind the Notifier
// interface consumed by the scenario engine.
type Dispatcher struct {
	endpoint *EndpointClient
	bot      *BotClient
}

// NewDispatcher wires the two outbound clients together.
func NewDispatcher(endpoint *EndpointClient, bot *BotClient) *Dispatcher {
	return &Dispatcher{endpoint: endpoint, bot: bot}
}

// SendToEndpoint implements Notifier.
func (d *Dispatcher) SendToEndpoint(ctx context.Context, target EndpointTarget, msg EndpointMessage) error {
	return d.endpoint.Send(ctx, target, msg)
}

// SendToBot implements Notifier.
func (d *Dispatcher) SendToBot(ctx context.Context, msg BotMessage) error {
	return d.bot.Send(ctx, msg)
}

var _ Notifier = (*Dispatcher)(nil)
