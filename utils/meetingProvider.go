package utils

import (
	"eduhub/config"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// MeetingRoom is the provider side of a scheduled meeting
type MeetingRoom struct {
	Provider string
	RoomID   string
	JoinURL  string
}

type roomRequest struct {
	Name       string         `json:"name"`
	Privacy    string         `json:"privacy"`
	Properties roomProperties `json:"properties"`
}

type roomProperties struct {
	NotBefore int64 `json:"nbf"`
	Expires   int64 `json:"exp"`
}

type roomResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

var meetingClient = resty.New().SetTimeout(10 * time.Second)

// CreateMeetingRoom books a room at the configured video provider. Without a
// provider a public Jitsi room is used.
func CreateMeetingRoom(title string, startsAt time.Time, durationMinutes int) (MeetingRoom, error) {
	name := "eduhub-" + uuid.NewString()

	cfg := config.AppConfig
	if cfg == nil || cfg.MeetingAPIURL == "" {
		return MeetingRoom{Provider: "jitsi", RoomID: name, JoinURL: "https://meet.jit.si/" + name}, nil
	}

	var room roomResponse
	resp, err := meetingClient.R().
		SetAuthToken(cfg.MeetingAPIKey).
		SetBody(roomRequest{
			Name:    name,
			Privacy: "private",
			Properties: roomProperties{
				NotBefore: startsAt.Add(-15 * time.Minute).Unix(),
				Expires:   startsAt.Add(time.Duration(durationMinutes+30) * time.Minute).Unix(),
			},
		}).
		SetResult(&room).
		Post(strings.TrimRight(cfg.MeetingAPIURL, "/") + "/rooms")
	if err != nil {
		return MeetingRoom{}, fmt.Errorf("meeting provider request failed: %w", err)
	}
	if resp.IsError() {
		return MeetingRoom{}, fmt.Errorf("meeting provider responded %d: %s", resp.StatusCode(), resp.String())
	}
	if room.URL == "" {
		return MeetingRoom{}, fmt.Errorf("meeting provider returned no room url for %q", title)
	}

	roomID := room.ID
	if roomID == "" {
		roomID = room.Name
	}
	return MeetingRoom{Provider: "api", RoomID: roomID, JoinURL: room.URL}, nil
}
