package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomhub/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func newRoom(id model.RoomID) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Room{
		ID: id,
		Participants: []model.Participant{
			{ID: "conn-1", DisplayName: "Alice", JoinedAt: now},
			{ID: "conn-2", DisplayName: "Bob", JoinedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := newRoom("ROOM0001")
	room.WatchURL = "https://example.com/v"
	room.AppendMessage(model.NewMessage("hi", "Alice", "conn-1", room.CreatedAt))

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ROOM0001")
	s.Require().NoError(err)
	s.Equal(room.ID, retrieved.ID)
	s.Equal(room.WatchURL, retrieved.WatchURL)
	s.Equal(room.MemberIDs(), retrieved.MemberIDs())
	s.Require().Len(retrieved.Messages, 1)
	s.Equal("hi", retrieved.Messages[0].Text)
}

func (s *StorageSuite) TestGameStateSurvivesRoundTrip() {
	room := newRoom("ROOM0001")
	room.ActiveGame = &model.GameState{TicTacToe: &model.TicTacToeState{
		GameHeader: model.GameHeader{GameID: model.GameTicTacToe, Users: [2]model.ConnID{"conn-1", "conn-2"}},
		XTurn:      false,
	}}
	room.ActiveGame.TicTacToe.Board[4] = model.MarkX
	_ = s.storage.SaveRoom(s.ctx, room)

	retrieved, err := s.storage.GetRoom(s.ctx, "ROOM0001")
	s.Require().NoError(err)
	s.Require().NotNil(retrieved.ActiveGame)
	s.Require().NotNil(retrieved.ActiveGame.TicTacToe)
	s.Equal(model.MarkX, retrieved.ActiveGame.TicTacToe.Board[4])
	s.Equal(model.MarkEmpty, retrieved.ActiveGame.TicTacToe.Board[0])
	s.Equal(model.MarkEmpty, retrieved.ActiveGame.TicTacToe.Winner)
	s.False(retrieved.ActiveGame.TicTacToe.XTurn)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "MISSING1")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomHasTTL() {
	_ = s.storage.SaveRoom(s.ctx, newRoom("ROOM0001"))

	ttl := s.mini.TTL("roomhub:room:ROOM0001")
	s.True(ttl > 0, "room should have TTL")
}

func (s *StorageSuite) TestDeleteRoomRemovesIndexEntry() {
	_ = s.storage.SaveRoom(s.ctx, newRoom("ROOM0001"))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ROOM0001"))

	exists, err := s.storage.RoomExists(s.ctx, "ROOM0001")
	s.Require().NoError(err)
	s.False(exists)

	members, err := s.mini.Members("roomhub:rooms")
	if err == nil {
		s.NotContains(members, "ROOM0001")
	}
}

func (s *StorageSuite) TestCountRoomsPrunesExpired() {
	_ = s.storage.SaveRoom(s.ctx, newRoom("ROOM0001"))
	_ = s.storage.SaveRoom(s.ctx, newRoom("ROOM0002"))

	count, err := s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	s.mini.FastForward(2 * time.Hour)

	count, err = s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *StorageSuite) TestClear() {
	_ = s.storage.SaveRoom(s.ctx, newRoom("ROOM0001"))
	_ = s.storage.SaveRoom(s.ctx, newRoom("ROOM0002"))

	s.Require().NoError(s.storage.Clear(s.ctx))

	count, err := s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
	s.False(s.mini.Exists("roomhub:room:ROOM0001"))
}

func (s *StorageSuite) TestPrefixesAreIsolated() {
	otherCfg := DefaultConfig()
	otherCfg.Prefix = "staging"
	other := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), otherCfg)
	defer func() { _ = other.Close() }()

	s.Require().NoError(s.storage.SaveRoom(s.ctx, newRoom("ROOM0001")))
	s.Require().NoError(other.SaveRoom(s.ctx, newRoom("ROOM0002")))
	s.True(s.mini.Exists("staging:room:ROOM0002"))

	exists, err := other.RoomExists(s.ctx, "ROOM0001")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(other.Clear(s.ctx))
	count, err := s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *StorageSuite) TestNewFromURL() {
	cfg := DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	st, err := New(cfg)
	s.Require().NoError(err)
	defer func() { _ = st.Close() }()

	s.Require().NoError(st.SaveRoom(s.ctx, newRoom("ROOM0003")))
	s.True(s.mini.Exists("roomhub:room:ROOM0003"))
}

func (s *StorageSuite) TestNewRejectsBadConfig() {
	cfg := DefaultConfig()
	cfg.Prefix = ""
	_, err := New(cfg)
	s.Error(err)

	cfg = DefaultConfig()
	cfg.RoomTTL = -time.Second
	_, err = New(cfg)
	s.Error(err)

	cfg = DefaultConfig()
	cfg.URL = "not a url"
	_, err = New(cfg)
	s.Error(err)
}

func (s *StorageSuite) TestDefaultConfigNeverExpiresRooms() {
	st := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), DefaultConfig())
	defer func() { _ = st.Close() }()

	s.Require().NoError(st.SaveRoom(s.ctx, newRoom("ROOM0004")))
	s.Equal(time.Duration(0), s.mini.TTL("roomhub:room:ROOM0004"))

	s.mini.FastForward(30 * 24 * time.Hour)

	exists, err := st.RoomExists(s.ctx, "ROOM0004")
	s.Require().NoError(err)
	s.True(exists)
	count, err := st.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
