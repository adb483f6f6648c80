package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/roomhub/internal/dependencies/clock"
	"github.com/mcoot/roomhub/internal/dependencies/random"
	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/storage"
)

// Commit is called after a mutation has been saved, while the room is still
// locked. Broadcasts issued from a Commit leave in mutation order.
type Commit func(room *model.Room)

// JoinResult is the late-join catch-up snapshot
type JoinResult struct {
	RoomID            model.RoomID
	Participant       model.Participant // as stored; may carry an adopted name
	OtherParticipants []model.Participant
	Messages          []model.Message
	ActiveGame        *model.GameState
	WatchURL          string

	// Announce is true when the roster visibly changed: a new member, or a
	// creator whose display name was filled in by this join.
	Announce bool
}

// LeaveResult describes a departure
type LeaveResult struct {
	Removed     bool
	Participant model.Participant
	Remaining   []model.ConnID
	Deleted     bool
}

// Store owns the roomId -> Room mapping and serialises all access per room
type Store struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	// mu guards locks and the create/delete transitions
	mu    sync.Mutex
	locks map[model.RoomID]*sync.Mutex
}

// NewStore creates a new Store
func NewStore(storage storage.Storage, clock clock.Clock, random random.Random, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room-store")),
		locks:   make(map[model.RoomID]*sync.Mutex),
	}
}

// lock acquires the room's mutex. A handle retired while we waited means the
// room was deleted underneath us.
func (s *Store) lock(id model.RoomID) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[id]
	s.mu.Unlock()
	if !ok {
		return nil, model.ErrRoomNotFound
	}

	l.Lock()

	s.mu.Lock()
	current := s.locks[id]
	s.mu.Unlock()
	if current != l {
		l.Unlock()
		return nil, model.ErrRoomNotFound
	}
	return l.Unlock, nil
}

// CreateRoom allocates a fresh room code and registers the creator as the
// first participant
func (s *Store) CreateRoom(ctx context.Context, creator model.Participant) (model.RoomID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id model.RoomID
	for {
		id = model.RoomID(s.random.String(model.RoomIDLength, model.RoomIDAlphabet))
		if _, live := s.locks[id]; live {
			continue
		}
		exists, err := s.storage.RoomExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			break
		}
	}

	now := s.clock.Now()
	creator.JoinedAt = now
	room := &model.Room{
		ID:           id,
		Participants: []model.Participant{creator},
		Messages:     []model.Message{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveRoom(ctx, room); err != nil {
		s.logger.Error("failed to save room",
			slog.String("room_id", string(id)),
			slog.String("error", err.Error()),
		)
		return "", err
	}
	s.locks[id] = &sync.Mutex{}

	s.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("conn_id", string(creator.ID)))
	return id, nil
}

// Get returns a snapshot of the room
func (s *Store) Get(ctx context.Context, id model.RoomID) (*model.Room, error) {
	unlock, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.load(ctx, id)
}

// View runs fn against the current room under its lock without saving
func (s *Store) View(ctx context.Context, id model.RoomID, fn func(room *model.Room)) error {
	unlock, err := s.lock(id)
	if err != nil {
		return err
	}
	defer unlock()

	room, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	fn(room)
	return nil
}

// Update is a serialised read-modify-write. mutate reports whether it changed
// the room; only then is the room saved and commit invoked.
func (s *Store) Update(ctx context.Context, id model.RoomID, mutate func(room *model.Room) (bool, error), commit Commit) error {
	unlock, err := s.lock(id)
	if err != nil {
		return err
	}
	defer unlock()

	room, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	changed, err := mutate(room)
	if err != nil || !changed {
		return err
	}

	room.UpdatedAt = s.clock.Now()
	if err := s.storage.SaveRoom(ctx, room); err != nil {
		return fmt.Errorf("saving room %s: %w", id, err)
	}
	if commit != nil {
		commit(room)
	}
	return nil
}

// JoinRoom adds a participant, or returns the catch-up snapshot for one who
// is already a member. commit runs under the room lock on every success.
func (s *Store) JoinRoom(ctx context.Context, id model.RoomID, p model.Participant, commit func(res *JoinResult)) (*JoinResult, error) {
	var res *JoinResult
	err := s.Update(ctx, id, func(room *model.Room) (bool, error) {
		changed := false
		existing := room.GetParticipant(p.ID)
		switch {
		case existing == nil:
			if room.IsFull() {
				return false, model.ErrRoomFull
			}
			p.JoinedAt = s.clock.Now()
			room.Participants = append(room.Participants, p)
			existing = &room.Participants[len(room.Participants)-1]
			changed = true
		case existing.DisplayName == "" && p.DisplayName != "":
			existing.DisplayName = p.DisplayName
			changed = true
		}

		res = &JoinResult{
			RoomID:            room.ID,
			Participant:       *existing,
			OtherParticipants: room.Others(p.ID),
			Messages:          append([]model.Message(nil), room.Messages...),
			WatchURL:          room.WatchURL,
			Announce:          changed,
		}
		if room.ActiveGame != nil {
			res.ActiveGame = room.ActiveGame.Clone()
		}
		if !changed && commit != nil {
			// nothing to save, but the caller still needs its reply in order
			commit(res)
		}
		return changed, nil
	}, func(*model.Room) {
		if commit != nil {
			commit(res)
		}
	})
	if err != nil {
		return nil, err
	}

	if res.Announce {
		s.logger.Info("participant joined",
			slog.String("room_id", string(id)),
			slog.String("conn_id", string(p.ID)))
	}
	return res, nil
}

// Leave removes a participant and deletes the room once it is empty. Leaving
// a room one is not a member of is a no-op.
func (s *Store) Leave(ctx context.Context, id model.RoomID, conn model.ConnID, commit func(res *LeaveResult)) (*LeaveResult, error) {
	unlock, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	room, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	removed, ok := room.RemoveParticipant(conn)
	if !ok {
		return &LeaveResult{}, nil
	}
	res := &LeaveResult{
		Removed:     true,
		Participant: removed,
		Remaining:   room.MemberIDs(),
	}

	if room.IsEmpty() {
		if err := s.deleteLocked(ctx, id); err != nil {
			return nil, err
		}
		res.Deleted = true
	} else {
		room.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveRoom(ctx, room); err != nil {
			return nil, fmt.Errorf("saving room %s: %w", id, err)
		}
	}

	if commit != nil {
		commit(res)
	}

	s.logger.Info("participant left",
		slog.String("room_id", string(id)),
		slog.String("conn_id", string(conn)),
		slog.Bool("room_deleted", res.Deleted))
	return res, nil
}

// load reads the room while the caller holds its lock. A room that has
// disappeared from storage has its lock retired, so it stops counting as live
// and waiters observe ErrRoomNotFound.
func (s *Store) load(ctx context.Context, id model.RoomID) (*model.Room, error) {
	room, err := s.storage.GetRoom(ctx, id)
	if errors.Is(err, model.ErrRoomNotFound) {
		s.logger.Warn("room missing from storage, retiring",
			slog.String("room_id", string(id)))
		s.retire(id)
	}
	return room, err
}

func (s *Store) retire(id model.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
}

// deleteLocked removes the room and retires its lock. The caller holds the
// room lock.
func (s *Store) deleteLocked(ctx context.Context, id model.RoomID) error {
	if err := s.storage.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.retire(id)
	return nil
}

// AppendMessage adds a chat message authored by a current member
func (s *Store) AppendMessage(ctx context.Context, id model.RoomID, msg model.Message, commit func(room *model.Room, stored model.Message)) (model.Message, error) {
	var stored model.Message
	err := s.Update(ctx, id, func(room *model.Room) (bool, error) {
		if room.GetParticipant(msg.AuthorID) == nil {
			return false, model.ErrNotInRoom
		}
		stored = room.AppendMessage(msg)
		return true, nil
	}, func(room *model.Room) {
		if commit != nil {
			commit(room, stored)
		}
	})
	if err != nil {
		return model.Message{}, err
	}
	return stored, nil
}

// SetWatchURL replaces the room's shared watch pointer
func (s *Store) SetWatchURL(ctx context.Context, id model.RoomID, by model.ConnID, url string, commit Commit) error {
	return s.Update(ctx, id, func(room *model.Room) (bool, error) {
		if room.GetParticipant(by) == nil {
			return false, model.ErrNotInRoom
		}
		room.WatchURL = url
		return true, nil
	}, commit)
}

// Count returns the number of rooms held in storage
func (s *Store) Count(ctx context.Context) (int, error) {
	return s.storage.CountRooms(ctx)
}
