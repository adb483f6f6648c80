package response

import (
	"time"

	"github.com/mcoot/roomhub/internal/model"
)

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}

// Stats is the live counter body
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Participant represents a room member in API responses
type Participant struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}

// Room is a summary of a live room. Message bodies are not exposed.
type Room struct {
	ID           string        `json:"id"`
	Participants []Participant `json:"participants"`
	MessageCount int           `json:"message_count"`
	WatchURL     string        `json:"watch_url,omitempty"`
	ActiveGame   string        `json:"active_game,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// RoomFromModel converts a model.Room to a response Room
func RoomFromModel(r *model.Room) Room {
	participants := make([]Participant, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = Participant{
			ID:          string(p.ID),
			DisplayName: p.DisplayName,
			JoinedAt:    p.JoinedAt,
		}
	}

	room := Room{
		ID:           string(r.ID),
		Participants: participants,
		MessageCount: len(r.Messages),
		WatchURL:     r.WatchURL,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.ActiveGame != nil {
		room.ActiveGame = string(r.ActiveGame.ID())
	}
	return room
}
