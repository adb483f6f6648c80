package model

import "time"

// RoomID is the short join code shared between participants
type RoomID string

const (
	// RoomIDLength is the length of generated room codes
	RoomIDLength = 8
	// RoomIDAlphabet is the set of characters room codes are drawn from
	RoomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// MaxParticipants is the hard cap on room membership
	MaxParticipants = 10
	// MaxMessages is the number of chat messages retained per room
	MaxMessages = 200
)

// Participant is a member of a room. The display name is fixed at join.
type Participant struct {
	ID          ConnID    `json:"id"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// GameInvite is an outstanding invitation to start a game
type GameInvite struct {
	GameID GameID `json:"gameId"`
	FromID ConnID `json:"fromId"`
}

// Room is the per-room aggregate: roster, chat history, watch pointer and game
type Room struct {
	ID            RoomID        `json:"id"`
	Participants  []Participant `json:"participants"` // join order
	Messages      []Message     `json:"messages"`     // oldest first, at most MaxMessages
	WatchURL      string        `json:"watchUrl,omitempty"`
	ActiveGame    *GameState    `json:"activeGame,omitempty"`
	PendingInvite *GameInvite   `json:"pendingInvite,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// GetParticipant returns the participant with the given ID, or nil if not found
func (r *Room) GetParticipant(id ConnID) *Participant {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return &r.Participants[i]
		}
	}
	return nil
}

// IsFull returns true if no further participants may join
func (r *Room) IsFull() bool {
	return len(r.Participants) >= MaxParticipants
}

// IsEmpty returns true if the room has no participants left
func (r *Room) IsEmpty() bool {
	return len(r.Participants) == 0
}

// RemoveParticipant removes the participant with the given ID, preserving order
func (r *Room) RemoveParticipant(id ConnID) (Participant, bool) {
	for i, p := range r.Participants {
		if p.ID == id {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return p, true
		}
	}
	return Participant{}, false
}

// Others returns a copy of the roster without the given participant
func (r *Room) Others(id ConnID) []Participant {
	others := make([]Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p.ID != id {
			others = append(others, p)
		}
	}
	return others
}

// MemberIDs returns the identities of all participants in join order
func (r *Room) MemberIDs() []ConnID {
	ids := make([]ConnID, len(r.Participants))
	for i, p := range r.Participants {
		ids[i] = p.ID
	}
	return ids
}

// Seats returns the first two participants, who hold the seats of a new game
func (r *Room) Seats() ([2]ConnID, bool) {
	if len(r.Participants) < 2 {
		return [2]ConnID{}, false
	}
	return [2]ConnID{r.Participants[0].ID, r.Participants[1].ID}, true
}

// AppendMessage adds a message, evicting the oldest once MaxMessages is exceeded.
// Message IDs are kept strictly increasing within the room.
func (r *Room) AppendMessage(msg Message) Message {
	if n := len(r.Messages); n > 0 && msg.ID <= r.Messages[n-1].ID {
		msg.ID = r.Messages[n-1].ID + 1
	}
	r.Messages = append(r.Messages, msg)
	if len(r.Messages) > MaxMessages {
		r.Messages = r.Messages[len(r.Messages)-MaxMessages:]
	}
	return msg
}

// Snapshot returns a deep copy safe to hand outside the room's lock
func (r *Room) Snapshot() *Room {
	cp := *r
	cp.Participants = append([]Participant(nil), r.Participants...)
	cp.Messages = append([]Message(nil), r.Messages...)
	if r.ActiveGame != nil {
		cp.ActiveGame = r.ActiveGame.Clone()
	}
	if r.PendingInvite != nil {
		inv := *r.PendingInvite
		cp.PendingInvite = &inv
	}
	return &cp
}
