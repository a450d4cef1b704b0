package lookup

import "context"

// Endpoint holds the address and credentials of a room's conferencing device.
type Endpoint struct {
	IP       string `json:"ip"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Meeting identifies a currently scheduled meeting in a room.
type Meeting struct {
	ID string `json:"meetingId"`
}

// Snapshot is the result of a camera snapshot request.
type Snapshot struct {
	URL    string `json:"url"`
	Expiry string `json:"expiry"`
}

// Resolver is the set of lookups the scenario engine needs to turn a camera
// observation into a person and a dispatch target. Implementations must
// honour context cancellation on every call.
//
// RoomMeeting returns (nil, nil) when the room has no current meeting; the
// caller treats that as a benign outcome, not a failure.
type Resolver interface {
	CameraNetwork(ctx context.Context, serial string) (string, error)
	TakeSnapshot(ctx context.Context, networkID, serial string) (Snapshot, error)
	IdentifyPerson(ctx context.Context, imageURL string) (string, error)
	CameraRoom(ctx context.Context, serial string) (string, error)
	RoomEndpoint(ctx context.Context, roomID string) (Endpoint, error)
	RoomMeeting(ctx context.Context, roomID string) (*Meeting, error)
	MeetingAttendants(ctx context.Context, meetingID string) ([]string, error)
}
