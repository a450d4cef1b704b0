package dispatch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
)

// sendTimeout bounds a single endpoint exchange (dial, command, reply).
const sendTimeout = 10 * time.Second

// xCommandRequest is the JSON-RPC frame the endpoint's WebSocket API expects
// for an xCommand invocation.
type xCommandRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// xCommandResponse is the reply frame. Either Result or Error is set.
type xCommandResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// EndpointClient delivers messages to conferencing endpoints over their
// WebSocket xAPI. A fresh connection is dialed per message; scenario traffic
// is far too sparse to justify keeping sessions open.
type EndpointClient struct {
	dialer   *websocket.Dialer
	fallback EndpointTarget
	logger   *logging.Logger
}

// NewEndpointClient creates an endpoint client. The configured endpoint
// section supplies default credentials for targets resolved without any.
func NewEndpointClient(cfg config.EndpointConfig, logger *logging.Logger) *EndpointClient {
	return &EndpointClient{
		dialer: &websocket.Dialer{
			HandshakeTimeout: sendTimeout,
		},
		fallback: EndpointTarget{
			IP:       cfg.IP,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		logger: logger.With("component", "dispatch.endpoint"),
	}
}

// Send connects to the target endpoint, issues a Message Send xCommand
// carrying the encoded payload, and waits for the command reply.
func (c *EndpointClient) Send(ctx context.Context, target EndpointTarget, msg EndpointMessage) error {
	target = c.withFallback(target)
	if target.IP == "" {
		return ErrNoTarget
	}

	text, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encoding endpoint message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	endpoint := url.URL{Scheme: "ws", Host: target.IP, Path: "/ws"}
	header := http.Header{}
	header.Set("Authorization", basicAuth(target.Username, target.Password))

	conn, _, err := c.dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %w", ErrEndpointUnreachable, target.IP, err)
	}
	defer conn.Close()

	request := xCommandRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "xCommand/Message/Send",
		Params:  map[string]any{"Text": text},
	}

	deadline, _ := ctx.Deadline()
	conn.SetWriteDeadline(deadline)
	if err := conn.WriteJSON(request); err != nil {
		return fmt.Errorf("%w: sending command to %s: %w", ErrEndpointUnreachable, target.IP, err)
	}

	conn.SetReadDeadline(deadline)
	var response xCommandResponse
	if err := conn.ReadJSON(&response); err != nil {
		return fmt.Errorf("%w: reading reply from %s: %w", ErrEndpointUnreachable, target.IP, err)
	}
	if response.Error != nil {
		return fmt.Errorf("%w: endpoint %s rejected command: %s", ErrEndpointUnreachable, target.IP, response.Error.Message)
	}

	c.logger.Debug("endpoint message delivered",
		"target", target.IP,
		"message_id", msg.ID,
	)
	return nil
}

// withFallback fills empty target fields from the configured defaults.
func (c *EndpointClient) withFallback(target EndpointTarget) EndpointTarget {
	if target.IP == "" {
		target.IP = c.fallback.IP
	}
	if target.Username == "" {
		target.Username = c.fallback.Username
	}
	if target.Password == "" {
		target.Password = c.fallback.Password
	}
	return target
}

func basicAuth(username, password string) string {
	credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + credentials
}
