package coordinator

import (
	"context"
	"errors"

	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/services/registry"
	"github.com/mcoot/roomhub/internal/services/room"
)

// Room lifecycle

func (c *Coordinator) handleCreateRoom(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.CreateRoomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if session.InRoom() {
		c.leave(ctx, session)
	}

	roomID, err := c.rooms.CreateRoom(ctx, model.Participant{ID: session.ID, DisplayName: req.DisplayName})
	if err != nil {
		return err
	}
	_ = c.registry.SetRoom(session.ID, roomID)
	_ = c.registry.SetDisplayName(session.ID, req.DisplayName)

	c.reply(session.ID, in.Ack, model.CreateRoomAck{RoomID: roomID})
	return nil
}

func (c *Coordinator) handleJoinRoom(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.JoinRoomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if session.InRoom() && session.RoomID != req.RoomID {
		c.leave(ctx, session)
	}

	participant := model.Participant{ID: session.ID, DisplayName: req.DisplayName}
	_, err := c.rooms.JoinRoom(ctx, req.RoomID, participant, func(res *room.JoinResult) {
		_ = c.registry.SetRoom(session.ID, res.RoomID)
		_ = c.registry.SetDisplayName(session.ID, res.Participant.DisplayName)

		c.reply(session.ID, in.Ack, model.JoinRoomAck{
			Success:           true,
			OtherParticipants: res.OtherParticipants,
			Messages:          res.Messages,
			ActiveGame:        res.ActiveGame,
			WatchURL:          res.WatchURL,
		})

		if res.Announce {
			others := make([]model.ConnID, len(res.OtherParticipants))
			for i, p := range res.OtherParticipants {
				others[i] = p.ID
			}
			c.broadcast(others, session.ID, model.Event{
				Name: model.EventUserJoined,
				Payload: model.ParticipantPayload{
					ID:          res.Participant.ID,
					DisplayName: res.Participant.DisplayName,
				},
			})
		}
	})
	if errors.Is(err, model.ErrRoomNotFound) || errors.Is(err, model.ErrRoomFull) {
		c.reply(session.ID, in.Ack, model.JoinRoomError{Error: model.ClientMessage(err)})
	}
	return err
}

// Signaling

func (c *Coordinator) handleCallUser(_ context.Context, session registry.Session, in model.Inbound) error {
	var req model.CallUserRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	c.relay.Offer(session.ID, req)
	return nil
}

func (c *Coordinator) handleAnswerCall(_ context.Context, session registry.Session, in model.Inbound) error {
	var req model.AnswerCallRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	c.relay.Answer(session.ID, req)
	return nil
}

func (c *Coordinator) handleIceCandidate(_ context.Context, session registry.Session, in model.Inbound) error {
	var req model.IceCandidateRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	c.relay.Candidate(session.ID, req)
	return nil
}

// Chat and shared state

func (c *Coordinator) handleSendMessage(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.SendMessageRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	name := req.DisplayName
	if name == "" {
		name = session.DisplayName
	}
	msg := model.NewMessage(req.Text, name, session.ID, c.clock.Now())

	_, err := c.rooms.AppendMessage(ctx, req.RoomID, msg, func(r *model.Room, stored model.Message) {
		c.broadcast(r.MemberIDs(), "", model.Event{Name: model.EventNewMessage, Payload: stored})
	})
	return err
}

func (c *Coordinator) handleFileShare(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.FileShareRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.relayToRoom(ctx, session, req.RoomID, model.Event{
		Name: model.EventFileReceived,
		Payload: model.FileReceivedPayload{
			From:      session.ID,
			FromName:  session.DisplayName,
			FileName:  req.FileName,
			FileType:  req.FileType,
			FileSize:  req.FileSize,
			FileBytes: req.FileBytes,
		},
	})
}

func (c *Coordinator) handleWatchSync(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.WatchSyncRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.rooms.SetWatchURL(ctx, req.RoomID, session.ID, req.URL, func(r *model.Room) {
		c.broadcast(r.MemberIDs(), session.ID, model.Event{
			Name: model.EventWatchUpdate,
			Payload: model.WatchUpdatePayload{
				URL:      req.URL,
				From:     session.ID,
				FromName: session.DisplayName,
			},
		})
	})
}

func (c *Coordinator) handleWatchControl(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.WatchControlRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.relayToRoom(ctx, session, req.RoomID, model.Event{
		Name: model.EventWatchControl,
		Payload: model.WatchControlPayload{
			Action:   req.Action,
			Time:     req.Time,
			From:     session.ID,
			FromName: session.DisplayName,
		},
	})
}

func (c *Coordinator) handleScreenShare(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.ScreenShareRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.relayToRoom(ctx, session, req.RoomID, model.Event{
		Name:    in.Name,
		Payload: model.ScreenSharePayload{From: session.ID, FromName: session.DisplayName},
	})
}

// relayToRoom forwards an event to the sender's room mates without touching
// room state. It still runs under the room lock to keep per-room order.
func (c *Coordinator) relayToRoom(ctx context.Context, session registry.Session, roomID model.RoomID, event model.Event) error {
	var err error
	viewErr := c.rooms.View(ctx, roomID, func(r *model.Room) {
		if r.GetParticipant(session.ID) == nil {
			err = model.ErrNotInRoom
			return
		}
		c.broadcast(r.MemberIDs(), session.ID, event)
	})
	if viewErr != nil {
		return viewErr
	}
	return err
}

// Games

func (c *Coordinator) handleGameInvite(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.GameRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.games.Invite(ctx, req.RoomID, session.ID, req.GameID, func(r *model.Room) {
		c.broadcast(r.MemberIDs(), session.ID, model.Event{
			Name: model.EventGameInvite,
			Payload: model.GameInvitePayload{
				GameID:   req.GameID,
				FromName: session.DisplayName,
				FromID:   session.ID,
			},
		})
	})
}

func (c *Coordinator) handleGameAccept(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.GameRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.games.Accept(ctx, req.RoomID, session.ID, req.GameID, func(r *model.Room) {
		c.broadcast(r.MemberIDs(), "", model.Event{
			Name: model.EventGameSyncStart,
			Payload: model.GameSyncStartPayload{
				Action:    "start-sync",
				GameID:    req.GameID,
				GameState: r.ActiveGame.Clone(),
			},
		})
	})
}

func (c *Coordinator) handleGameAction(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.GameRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.games.Act(ctx, req.RoomID, session.ID, req.GameID, req.Action, c.publishGameState)
}

func (c *Coordinator) handleGameReset(ctx context.Context, session registry.Session, in model.Inbound) error {
	var req model.GameRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if err := inRoom(session, req.RoomID); err != nil {
		return err
	}

	return c.games.Reset(ctx, req.RoomID, session.ID, req.GameID, c.publishGameState)
}

func (c *Coordinator) publishGameState(r *model.Room) {
	c.broadcast(r.MemberIDs(), "", model.Event{
		Name:    model.EventGameStateUpdate,
		Payload: r.ActiveGame.Clone(),
	})
}
