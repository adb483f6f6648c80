package registry

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomhub/internal/dependencies/mocks"
	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/testutil"
)

type recordingSink struct {
	mu     sync.Mutex
	events []model.Event
	full   bool
}

func (s *recordingSink) Send(event model.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.events = append(s.events, event)
	return true
}

type RegistrySuite struct {
	suite.Suite
	clock    *mocks.MockClock
	logs     *testutil.LogRecorder
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	logger, logs := testutil.RecordingLogger()
	s.logs = logs
	s.registry = New(mocks.NewMockIdentity(), s.clock, logger)
}

func (s *RegistrySuite) TestRegisterIssuesDistinctIdentities() {
	a := s.registry.Register(&recordingSink{})
	b := s.registry.Register(&recordingSink{})

	s.Equal(model.ConnID("conn-1"), a.ID)
	s.Equal(model.ConnID("conn-2"), b.ID)
	s.Equal(2, s.registry.Count())
	s.False(a.InRoom())
}

func (s *RegistrySuite) TestGetUnknown() {
	_, err := s.registry.Get("nobody")
	s.ErrorIs(err, model.ErrConnectionNotFound)
}

func (s *RegistrySuite) TestSetRoomAndDisplayName() {
	session := s.registry.Register(&recordingSink{})

	s.Require().NoError(s.registry.SetRoom(session.ID, "ROOM0001"))
	s.Require().NoError(s.registry.SetDisplayName(session.ID, "Alice"))

	got, err := s.registry.Get(session.ID)
	s.Require().NoError(err)
	s.Equal(model.RoomID("ROOM0001"), got.RoomID)
	s.Equal("Alice", got.DisplayName)
	s.True(got.InRoom())

	s.ErrorIs(s.registry.SetRoom("nobody", "ROOM0001"), model.ErrConnectionNotFound)
	s.ErrorIs(s.registry.SetDisplayName("nobody", "x"), model.ErrConnectionNotFound)
}

func (s *RegistrySuite) TestDeliver() {
	sink := &recordingSink{}
	session := s.registry.Register(sink)

	ok := s.registry.Deliver(session.ID, model.Event{Name: model.EventMe})
	s.True(ok)
	s.Require().Len(sink.events, 1)
	s.Equal(model.EventMe, sink.events[0].Name)
}

func (s *RegistrySuite) TestDeliverToUnknownIsDropped() {
	s.False(s.registry.Deliver("nobody", model.Event{Name: model.EventMe}))
}

func (s *RegistrySuite) TestDeliverToFullSinkReportsDrop() {
	session := s.registry.Register(&recordingSink{full: true})
	s.False(s.registry.Deliver(session.ID, model.Event{Name: model.EventMe}))
	s.Contains(s.logs.Messages(slog.LevelWarn), "event dropped - connection buffer full")
}

func (s *RegistrySuite) TestUnregister() {
	sink := &recordingSink{}
	session := s.registry.Register(sink)
	_ = s.registry.SetRoom(session.ID, "ROOM0001")

	final, ok := s.registry.Unregister(session.ID)
	s.True(ok)
	s.Equal(model.RoomID("ROOM0001"), final.RoomID)
	s.Equal(0, s.registry.Count())
	s.False(s.registry.Deliver(session.ID, model.Event{Name: model.EventMe}))

	_, ok = s.registry.Unregister(session.ID)
	s.False(ok)
}
