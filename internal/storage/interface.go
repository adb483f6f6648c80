package storage

import (
	"context"

	"github.com/mcoot/roomhub/internal/model"
)

// Storage persists Room aggregates. Callers serialise access per room;
// implementations only need to be safe for concurrent use across rooms.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, id model.RoomID) (*model.Room, error)
	DeleteRoom(ctx context.Context, id model.RoomID) error
	RoomExists(ctx context.Context, id model.RoomID) (bool, error)
	CountRooms(ctx context.Context) (int, error)

	// Clear drops every room. Used at boot since identities do not survive a restart.
	Clear(ctx context.Context) error
}
