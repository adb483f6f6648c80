package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/services/room"
)

// Controller is the authoritative game state machine for every room. All
// transitions go through the room store, so actions in one room are applied
// in arrival order.
type Controller struct {
	rooms    *room.Store
	variants map[model.GameID]Variant
	logger   *slog.Logger
}

// NewController creates a new GameController with the given variants
func NewController(rooms *room.Store, logger *slog.Logger, variants ...Variant) *Controller {
	c := &Controller{
		rooms:    rooms,
		variants: make(map[model.GameID]Variant),
		logger:   logger.With(slog.String("component", "game")),
	}
	for _, v := range variants {
		c.variants[v.ID()] = v
	}
	return c
}

// Variant returns the registered variant for a game id
func (c *Controller) Variant(id model.GameID) (Variant, bool) {
	v, ok := c.variants[id]
	return v, ok
}

// Invite records a pending invitation. A later invite replaces an earlier one.
func (c *Controller) Invite(ctx context.Context, roomID model.RoomID, from model.ConnID, gameID model.GameID, commit room.Commit) error {
	if _, ok := c.variants[gameID]; !ok {
		return fmt.Errorf("%w: %q", model.ErrUnknownGame, gameID)
	}

	return c.rooms.Update(ctx, roomID, func(r *model.Room) (bool, error) {
		if r.GetParticipant(from) == nil {
			return false, model.ErrNotInRoom
		}
		r.PendingInvite = &model.GameInvite{GameID: gameID, FromID: from}
		return true, nil
	}, commit)
}

// Accept starts the invited game. Seats go to the first two participants of
// the room, whoever invited or accepted.
func (c *Controller) Accept(ctx context.Context, roomID model.RoomID, by model.ConnID, gameID model.GameID, commit room.Commit) error {
	variant, ok := c.variants[gameID]
	if !ok {
		return fmt.Errorf("%w: %q", model.ErrUnknownGame, gameID)
	}

	return c.rooms.Update(ctx, roomID, func(r *model.Room) (bool, error) {
		if r.GetParticipant(by) == nil {
			return false, model.ErrNotInRoom
		}
		invite := r.PendingInvite
		if invite == nil || invite.GameID != gameID || invite.FromID == by {
			return false, model.ErrNoInvite
		}
		seats, ok := r.Seats()
		if !ok {
			return false, model.ErrNotEnoughPlayers
		}

		r.ActiveGame = variant.New(seats)
		r.PendingInvite = nil

		c.logger.Info("game started",
			slog.String("room_id", string(roomID)),
			slog.String("game_id", string(gameID)),
			slog.String("seat_0", string(seats[0])),
			slog.String("seat_1", string(seats[1])),
		)
		return true, nil
	}, commit)
}

// Act applies a move. Rejected moves leave the room untouched and return
// ErrIllegalMove; commit only runs for accepted transitions.
func (c *Controller) Act(ctx context.Context, roomID model.RoomID, by model.ConnID, gameID model.GameID, action json.RawMessage, commit room.Commit) error {
	return c.rooms.Update(ctx, roomID, func(r *model.Room) (bool, error) {
		active := r.ActiveGame
		if active == nil {
			return false, model.ErrNoActiveGame
		}
		if gameID != active.ID() {
			return false, model.ErrIllegalMove
		}
		variant, ok := c.variants[active.ID()]
		if !ok {
			return false, fmt.Errorf("%w: %q", model.ErrUnknownGame, active.ID())
		}

		next := active.Clone()
		if !variant.Apply(next, by, action) {
			return false, model.ErrIllegalMove
		}
		r.ActiveGame = next
		return true, nil
	}, commit)
}

// Reset replaces the active game with a fresh one for the same seats
func (c *Controller) Reset(ctx context.Context, roomID model.RoomID, by model.ConnID, gameID model.GameID, commit room.Commit) error {
	return c.rooms.Update(ctx, roomID, func(r *model.Room) (bool, error) {
		if r.GetParticipant(by) == nil {
			return false, model.ErrNotInRoom
		}
		active := r.ActiveGame
		if active == nil {
			return false, model.ErrNoActiveGame
		}
		if gameID != active.ID() {
			return false, model.ErrIllegalMove
		}
		variant, ok := c.variants[active.ID()]
		if !ok {
			return false, fmt.Errorf("%w: %q", model.ErrUnknownGame, active.ID())
		}

		r.ActiveGame = variant.New(active.Header().Users)
		return true, nil
	}, commit)
}
