package lookup

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
)

// Client implements Resolver against the cloud/data API. One resty client is
// shared across all steps; the per-request timeout bounds each chain step so a
// stalled vendor call fails the chain instead of blocking the trigger forever.
type Client struct {
	http   *resty.Client
	logger *logging.Logger
}

// NewClient builds a Client from the cloud section of the configuration.
func NewClient(cfg config.CloudConfig, logger *logging.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.GetStepTimeout()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Cisco-Meraki-API-Key", cfg.APIKey)

	return &Client{
		http:   httpClient,
		logger: logger.With("component", "lookup"),
	}
}

// CameraNetwork returns the network the camera with the given serial belongs to.
func (c *Client) CameraNetwork(ctx context.Context, serial string) (string, error) {
	var result struct {
		NetworkID string `json:"networkId"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/devices/%s", serial))
	if err := checkResponse("camera network", resp, err); err != nil {
		return "", err
	}
	if result.NetworkID == "" {
		return "", fmt.Errorf("camera network: empty network id for serial %s: %w", serial, ErrNotFound)
	}

	return result.NetworkID, nil
}

// TakeSnapshot requests a fresh snapshot from the camera. The vendor answers
// 202 Accepted with a short-lived image URL.
func (c *Client) TakeSnapshot(ctx context.Context, networkID, serial string) (Snapshot, error) {
	var result Snapshot

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Post(fmt.Sprintf("/networks/%s/cameras/%s/snapshot", networkID, serial))
	if err != nil {
		return Snapshot{}, fmt.Errorf("take snapshot: %w", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		return Snapshot{}, fmt.Errorf("take snapshot: status %d: %w", resp.StatusCode(), ErrUnexpectedStatus)
	}

	c.logger.Debug("snapshot captured", "serial", serial, "url", result.URL)
	return result, nil
}

// IdentifyPerson resolves the person visible in the snapshot to a username.
func (c *Client) IdentifyPerson(ctx context.Context, imageURL string) (string, error) {
	var result struct {
		Username string `json:"username"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"image": imageURL}).
		SetResult(&result).
		Post("/identify")
	if err := checkResponse("identify person", resp, err); err != nil {
		return "", err
	}
	if result.Username == "" {
		return "", fmt.Errorf("identify person: no match: %w", ErrNotFound)
	}

	return result.Username, nil
}

// CameraRoom returns the room the camera is installed in.
func (c *Client) CameraRoom(ctx context.Context, serial string) (string, error) {
	var result struct {
		RoomID string `json:"roomId"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/devices/%s/room", serial))
	if err := checkResponse("camera room", resp, err); err != nil {
		return "", err
	}
	if result.RoomID == "" {
		return "", fmt.Errorf("camera room: no room bound to serial %s: %w", serial, ErrNotFound)
	}

	return result.RoomID, nil
}

// RoomEndpoint returns the address and credentials of the room's conferencing
// device.
func (c *Client) RoomEndpoint(ctx context.Context, roomID string) (Endpoint, error) {
	var result Endpoint

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/rooms/%s/endpoint", roomID))
	if err := checkResponse("room endpoint", resp, err); err != nil {
		return Endpoint{}, err
	}
	if result.IP == "" {
		return Endpoint{}, fmt.Errorf("room endpoint: no device registered for room %s: %w", roomID, ErrNotFound)
	}

	return result, nil
}

// RoomMeeting returns the room's current meeting, or (nil, nil) when nothing
// is scheduled right now.
func (c *Client) RoomMeeting(ctx context.Context, roomID string) (*Meeting, error) {
	var result Meeting

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/rooms/%s/meeting", roomID))
	if err != nil {
		return nil, fmt.Errorf("room meeting: %w", err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if err := checkResponse("room meeting", resp, nil); err != nil {
		return nil, err
	}
	if result.ID == "" {
		return nil, nil
	}

	return &result, nil
}

// MeetingAttendants returns the usernames attending the given meeting.
func (c *Client) MeetingAttendants(ctx context.Context, meetingID string) ([]string, error) {
	var result struct {
		Attendants []string `json:"attendants"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get(fmt.Sprintf("/meetings/%s/attendants", meetingID))
	if err := checkResponse("meeting attendants", resp, err); err != nil {
		return nil, err
	}

	return result.Attendants, nil
}

// RawSnapshot performs the snapshot request without interpreting the body,
// for callers that pass the vendor response through verbatim. It returns the
// vendor status code alongside the body so the caller can decide how to react
// to a declined request.
func (c *Client) RawSnapshot(ctx context.Context, networkID, serial string) (int, []byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Post(fmt.Sprintf("/networks/%s/cameras/%s/snapshot", networkID, serial))
	if err != nil {
		return 0, nil, fmt.Errorf("raw snapshot: %w", err)
	}

	return resp.StatusCode(), resp.Body(), nil
}

// checkResponse folds the two resty failure modes (transport error, non-2xx
// status) into a single step-named error.
func checkResponse(step string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: status 404: %w", step, ErrNotFound)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: status %d: %w", step, resp.StatusCode(), ErrUnexpectedStatus)
	}
	return nil
}
