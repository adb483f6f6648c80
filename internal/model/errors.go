package model

import "errors"

// Common errors used across the application
var (
	// Room errors, the only ones surfaced to clients
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")

	// Connection errors
	ErrConnectionNotFound = errors.New("connection not found")
	ErrNotInRoom          = errors.New("connection is not in room")

	// Game errors
	ErrUnknownGame      = errors.New("unknown game")
	ErrNoActiveGame     = errors.New("no active game")
	ErrIllegalMove      = errors.New("illegal move")
	ErrNoInvite         = errors.New("no matching invite")
	ErrNotEnoughPlayers = errors.New("not enough participants for a game")

	// Protocol errors
	ErrInvalidPayload = errors.New("invalid payload")
)

// ClientMessage returns the text sent to clients for a surfaced error
func ClientMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, ErrRoomFull):
		return "Room is full (max 10)"
	default:
		return "Internal error"
	}
}
