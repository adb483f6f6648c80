package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/roomhub/internal/dependencies/clock"
	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/services/game"
	"github.com/mcoot/roomhub/internal/services/registry"
	"github.com/mcoot/roomhub/internal/services/room"
	"github.com/mcoot/roomhub/internal/services/signaling"
)

type handlerFunc func(ctx context.Context, session registry.Session, in model.Inbound) error

// Stats is a point-in-time count of live rooms and connections
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Coordinator dispatches inbound client events to the room store, signaling
// relay and game controller, and fans out the resulting broadcasts
type Coordinator struct {
	registry *registry.Registry
	rooms    *room.Store
	relay    *signaling.Relay
	games    *game.Controller
	clock    clock.Clock
	logger   *slog.Logger

	handlers map[model.EventName]handlerFunc
}

// New creates a new Coordinator
func New(
	registry *registry.Registry,
	rooms *room.Store,
	relay *signaling.Relay,
	games *game.Controller,
	clock clock.Clock,
	logger *slog.Logger,
) *Coordinator {
	c := &Coordinator{
		registry: registry,
		rooms:    rooms,
		relay:    relay,
		games:    games,
		clock:    clock,
		logger:   logger.With(slog.String("component", "coordinator")),
	}
	c.handlers = map[model.EventName]handlerFunc{
		model.EventCreateRoom:         c.handleCreateRoom,
		model.EventJoinRoom:           c.handleJoinRoom,
		model.EventCallUser:           c.handleCallUser,
		model.EventAnswerCall:         c.handleAnswerCall,
		model.EventIceCandidate:       c.handleIceCandidate,
		model.EventSendMessage:        c.handleSendMessage,
		model.EventFileShare:          c.handleFileShare,
		model.EventWatchSync:          c.handleWatchSync,
		model.EventWatchControl:       c.handleWatchControl,
		model.EventGameInvite:         c.handleGameInvite,
		model.EventGameAccept:         c.handleGameAccept,
		model.EventGameAction:         c.handleGameAction,
		model.EventGameReset:          c.handleGameReset,
		model.EventScreenShareStarted: c.handleScreenShare,
		model.EventScreenShareStopped: c.handleScreenShare,
	}
	return c
}

// Connect registers a new connection and tells it its identity
func (c *Coordinator) Connect(sink registry.Sink) model.ConnID {
	session := c.registry.Register(sink)
	c.registry.Deliver(session.ID, model.Event{
		Name:    model.EventMe,
		Payload: model.MePayload{ID: session.ID},
	})
	return session.ID
}

// Disconnect removes a connection, leaving its room first
func (c *Coordinator) Disconnect(ctx context.Context, id model.ConnID) {
	session, err := c.registry.Get(id)
	if err != nil {
		return
	}
	if session.InRoom() {
		c.leave(ctx, session)
	}
	c.registry.Unregister(id)
}

// Handle processes one inbound event from a connection. Events for a single
// connection must be handled sequentially.
func (c *Coordinator) Handle(ctx context.Context, id model.ConnID, in model.Inbound) {
	session, err := c.registry.Get(id)
	if err != nil {
		c.logger.Debug("event from unknown connection dropped",
			slog.String("conn_id", string(id)),
			slog.String("event", string(in.Name)))
		return
	}

	handler, ok := c.handlers[in.Name]
	if !ok {
		c.logger.Debug("unknown event dropped",
			slog.String("conn_id", string(id)),
			slog.String("event", string(in.Name)))
		return
	}

	if err := handler(ctx, session, in); err != nil {
		c.logRejection(session, in.Name, err)
	}

	// create-room and join-room answer their own acks
	if in.Ack != 0 && in.Name != model.EventCreateRoom && in.Name != model.EventJoinRoom {
		c.reply(id, in.Ack, nil)
	}
}

// Stats returns live room and connection counts
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	rooms, err := c.rooms.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("counting rooms: %w", err)
	}
	return Stats{
		Rooms:       rooms,
		Connections: c.registry.Count(),
	}, nil
}

func (c *Coordinator) logRejection(session registry.Session, event model.EventName, err error) {
	attrs := []any{
		slog.String("conn_id", string(session.ID)),
		slog.String("room_id", string(session.RoomID)),
		slog.String("event", string(event)),
		slog.String("error", err.Error()),
	}
	if isSilentReject(err) {
		c.logger.Debug("event rejected", attrs...)
		return
	}
	c.logger.Error("event failed", attrs...)
}

func isSilentReject(err error) bool {
	for _, target := range []error{
		model.ErrRoomNotFound,
		model.ErrRoomFull,
		model.ErrNotInRoom,
		model.ErrUnknownGame,
		model.ErrNoActiveGame,
		model.ErrIllegalMove,
		model.ErrNoInvite,
		model.ErrNotEnoughPlayers,
		model.ErrInvalidPayload,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// decode unmarshals an event payload. An absent payload decodes to the zero value.
func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidPayload, err)
	}
	return nil
}

// inRoom checks that a room-scoped event targets the sender's current room
func inRoom(session registry.Session, roomID model.RoomID) error {
	if !session.InRoom() || session.RoomID != roomID {
		return model.ErrNotInRoom
	}
	return nil
}

func (c *Coordinator) reply(id model.ConnID, ack int64, payload any) {
	if ack == 0 {
		return
	}
	c.registry.Deliver(id, model.Event{Name: model.EventAck, Payload: payload, Ack: ack})
}

// broadcast delivers an event to every listed identity except one
func (c *Coordinator) broadcast(to []model.ConnID, except model.ConnID, event model.Event) {
	for _, id := range to {
		if id == except {
			continue
		}
		c.registry.Deliver(id, event)
	}
}

func (c *Coordinator) leave(ctx context.Context, session registry.Session) {
	_, err := c.rooms.Leave(ctx, session.RoomID, session.ID, func(res *room.LeaveResult) {
		c.broadcast(res.Remaining, session.ID, model.Event{
			Name: model.EventUserLeft,
			Payload: model.ParticipantPayload{
				ID:          res.Participant.ID,
				DisplayName: res.Participant.DisplayName,
			},
		})
	})
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		c.logger.Error("failed to leave room",
			slog.String("conn_id", string(session.ID)),
			slog.String("room_id", string(session.RoomID)),
			slog.String("error", err.Error()))
	}
	_ = c.registry.SetRoom(session.ID, "")
}
