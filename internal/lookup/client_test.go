package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/roomsense/roomsense-core/internal/infrastructure/config"
	"github.com/roomsense/roomsense-core/internal/infrastructure/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	client := NewClient(config.CloudConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		StepTimeout: 2,
	}, log)

	return client, server
}

func TestCameraNetwork(t *testing.T) {
	var gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Cisco-Meraki-API-Key")
		if r.URL.Path != "/devices/Q2GV-TEST-0001" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"networkId":"N_123"}`))
	}))

	networkID, err := client.CameraNetwork(context.Background(), "Q2GV-TEST-0001")
	if err != nil {
		t.Fatalf("CameraNetwork() error = %v", err)
	}
	if networkID != "N_123" {
		t.Errorf("CameraNetwork() = %q, want %q", networkID, "N_123")
	}
	if gotKey != "test-key" {
		t.Errorf("API key header = %q, want %q", gotKey, "test-key")
	}
}

func TestCameraNetwork_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.CameraNetwork(context.Background(), "Q2GV-MISSING")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("CameraNetwork() error = %v, want ErrNotFound", err)
	}
	if err == nil || !strings.Contains(err.Error(), "camera network") {
		t.Errorf("error %v should name the failed step", err)
	}
}

func TestTakeSnapshot(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/networks/N_123/cameras/Q2GV-TEST-0001/snapshot" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"url":"https://cdn.example/snap.jpg","expiry":"1 day"}`))
	}))

	snap, err := client.TakeSnapshot(context.Background(), "N_123", "Q2GV-TEST-0001")
	if err != nil {
		t.Fatalf("TakeSnapshot() error = %v", err)
	}
	if snap.URL != "https://cdn.example/snap.jpg" {
		t.Errorf("snapshot URL = %q", snap.URL)
	}
}

func TestTakeSnapshot_Declined(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.TakeSnapshot(context.Background(), "N_123", "Q2GV-TEST-0001")
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("TakeSnapshot() error = %v, want ErrUnexpectedStatus", err)
	}
}

func TestIdentifyPerson(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/identify" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":"alice"}`))
	}))

	username, err := client.IdentifyPerson(context.Background(), "https://cdn.example/snap.jpg")
	if err != nil {
		t.Fatalf("IdentifyPerson() error = %v", err)
	}
	if username != "alice" {
		t.Errorf("IdentifyPerson() = %q, want %q", username, "alice")
	}
}

func TestIdentifyPerson_NoMatch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"username":""}`))
	}))

	_, err := client.IdentifyPerson(context.Background(), "https://cdn.example/snap.jpg")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("IdentifyPerson() error = %v, want ErrNotFound", err)
	}
}

func TestRoomEndpoint(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rooms/room-7/endpoint" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"10.0.0.1","username":"admin","password":"secret"}`))
	}))

	endpoint, err := client.RoomEndpoint(context.Background(), "room-7")
	if err != nil {
		t.Fatalf("RoomEndpoint() error = %v", err)
	}
	if endpoint.IP != "10.0.0.1" || endpoint.Username != "admin" {
		t.Errorf("RoomEndpoint() = %+v", endpoint)
	}
}

func TestRoomMeeting_Active(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"meetingId":"mtg-42"}`))
	}))

	meeting, err := client.RoomMeeting(context.Background(), "room-7")
	if err != nil {
		t.Fatalf("RoomMeeting() error = %v", err)
	}
	if meeting == nil || meeting.ID != "mtg-42" {
		t.Errorf("RoomMeeting() = %+v, want meeting mtg-42", meeting)
	}
}

func TestRoomMeeting_NoneScheduled(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no content", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}},
		{"empty meeting id", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"meetingId":""}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handler)

			meeting, err := client.RoomMeeting(context.Background(), "room-7")
			if err != nil {
				t.Fatalf("RoomMeeting() error = %v", err)
			}
			if meeting != nil {
				t.Errorf("RoomMeeting() = %+v, want nil for no active meeting", meeting)
			}
		})
	}
}

func TestMeetingAttendants(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/meetings/mtg-42/attendants" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"attendants":["alice","bob"]}`))
	}))

	attendants, err := client.MeetingAttendants(context.Background(), "mtg-42")
	if err != nil {
		t.Fatalf("MeetingAttendants() error = %v", err)
	}
	if len(attendants) != 2 || attendants[0] != "alice" {
		t.Errorf("MeetingAttendants() = %v", attendants)
	}
}

func TestRawSnapshot_PassesStatusThrough(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("vendor says no"))
	}))

	status, body, err := client.RawSnapshot(context.Background(), "N_123", "Q2GV-TEST-0001")
	if err != nil {
		t.Fatalf("RawSnapshot() error = %v", err)
	}
	if status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", status)
	}
	if string(body) != "vendor says no" {
		t.Errorf("body = %q", body)
	}
}

func TestContextCancellation(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CameraNetwork(ctx, "Q2GV-TEST-0001")
	if err == nil {
		t.Fatal("CameraNetwork() with cancelled context should fail")
	}
}
