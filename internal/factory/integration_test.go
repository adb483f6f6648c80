package factory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/services/coordinator"
	"github.com/mcoot/roomhub/internal/web/ws"
)

type IntegrationSuite struct {
	suite.Suite
	app    *TestApp
	server *httptest.Server
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.server = httptest.NewServer(s.app.Router)
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.WebSocket.CloseAll()
	s.server.Close()
}

type client struct {
	s    *IntegrationSuite
	conn *websocket.Conn
	id   model.ConnID
}

func (s *IntegrationSuite) connect() *client {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })

	c := &client{s: s, conn: conn}
	var me model.MePayload
	c.expect(model.EventMe, &me)
	c.id = me.ID
	return c
}

func (c *client) send(event model.EventName, data any, ack int64) {
	raw, err := json.Marshal(data)
	c.s.Require().NoError(err)
	c.s.Require().NoError(c.conn.WriteJSON(ws.Envelope{Event: string(event), Data: raw, Ack: ack}))
}

// expect reads the next frame, requires it to be the named event and decodes its data
func (c *client) expect(event model.EventName, into any) ws.Envelope {
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var env ws.Envelope
	c.s.Require().NoError(c.conn.ReadJSON(&env))
	c.s.Require().Equal(string(event), env.Event, "unexpected frame %s", env.Data)
	if into != nil {
		c.s.Require().NoError(json.Unmarshal(env.Data, into))
	}
	return env
}

func (s *IntegrationSuite) getJSON(path string, into any) int {
	resp, err := http.Get(s.server.URL + path)
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()
	if into != nil {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func (s *IntegrationSuite) createRoom(host *client, name string) model.RoomID {
	host.send(model.EventCreateRoom, model.CreateRoomRequest{DisplayName: name}, 1)
	var ack model.CreateRoomAck
	host.expect(model.EventAck, &ack)
	return ack.RoomID
}

func (s *IntegrationSuite) joinRoom(c *client, roomID model.RoomID, name string) model.JoinRoomAck {
	c.send(model.EventJoinRoom, model.JoinRoomRequest{RoomID: roomID, DisplayName: name}, 2)
	var ack model.JoinRoomAck
	c.expect(model.EventAck, &ack)
	return ack
}

// Test: a room's whole life over the real router, from creation to the last leave
func (s *IntegrationSuite) TestRoomLifecycle() {
	s.app.MockRandom.QueueString("ROOM0001")

	alice := s.connect()
	bob := s.connect()
	s.Equal(model.ConnID("conn-1"), alice.id)
	s.Equal(model.ConnID("conn-2"), bob.id)

	// Step 1: create and join
	roomID := s.createRoom(alice, "Alice")
	s.Equal(model.RoomID("ROOM0001"), roomID)

	join := s.joinRoom(bob, roomID, "Bob")
	s.True(join.Success)
	s.Require().Len(join.OtherParticipants, 1)
	s.Equal(alice.id, join.OtherParticipants[0].ID)

	var joined model.ParticipantPayload
	alice.expect(model.EventUserJoined, &joined)
	s.Equal("Bob", joined.DisplayName)

	// Step 2: chat reaches both members, sender included
	alice.send(model.EventSendMessage, model.SendMessageRequest{RoomID: roomID, Text: "hi"}, 0)
	var msg model.Message
	alice.expect(model.EventNewMessage, &msg)
	bob.expect(model.EventNewMessage, &msg)
	s.Equal("hi", msg.Text)
	s.Equal("Alice", msg.AuthorName)

	// Step 3: introspection
	var stats response.Stats
	s.Equal(http.StatusOK, s.getJSON("/api/v1/stats", &stats))
	s.Equal(response.Stats{Rooms: 1, Connections: 2}, stats)

	var summary response.Room
	s.Equal(http.StatusOK, s.getJSON("/api/v1/rooms/rooM0001", &summary))
	s.Equal("ROOM0001", summary.ID)
	s.Len(summary.Participants, 2)
	s.Equal(1, summary.MessageCount)

	// Step 4: both leave; the room goes with the last one
	_ = bob.conn.Close()
	var left model.ParticipantPayload
	alice.expect(model.EventUserLeft, &left)
	s.Equal(bob.id, left.ID)

	_ = alice.conn.Close()
	s.Eventually(func() bool {
		stats, err := s.app.Coordinator.Stats(context.Background())
		return err == nil && stats == coordinator.Stats{}
	}, 2*time.Second, 10*time.Millisecond)
	s.Equal(http.StatusNotFound, s.getJSON("/api/v1/rooms/ROOM0001", nil))
}

// Test: WebRTC negotiation is relayed point to point with opaque payloads
func (s *IntegrationSuite) TestSignalingExchange() {
	alice := s.connect()
	bob := s.connect()

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0"}`)
	alice.send(model.EventCallUser, model.CallUserRequest{To: bob.id, Payload: offer, DisplayName: "Alice"}, 0)
	var incoming model.IncomingCallPayload
	bob.expect(model.EventIncomingCall, &incoming)
	s.Equal(alice.id, incoming.From)
	s.Equal("Alice", incoming.DisplayName)
	s.JSONEq(string(offer), string(incoming.Payload))

	answer := json.RawMessage(`{"type":"answer","sdp":"v=0"}`)
	bob.send(model.EventAnswerCall, model.AnswerCallRequest{To: alice.id, Payload: answer}, 0)
	var accepted model.CallAcceptedPayload
	alice.expect(model.EventCallAccepted, &accepted)
	s.Equal(bob.id, accepted.From)
	s.JSONEq(string(answer), string(accepted.Payload))

	candidate := json.RawMessage(`{"candidate":"candidate:1 1 udp 1 10.0.0.1 9 typ host"}`)
	alice.send(model.EventIceCandidate, model.IceCandidateRequest{To: bob.id, Candidate: candidate}, 0)
	var ice model.IceCandidatePayload
	bob.expect(model.EventIceCandidate, &ice)
	s.Equal(alice.id, ice.From)
	s.JSONEq(string(candidate), string(ice.Candidate))
}

// Test: a rock-paper-scissors round from invite to reveal
func (s *IntegrationSuite) TestRockPaperScissorsRound() {
	s.app.MockRandom.QueueString("GAMEROOM")
	alice := s.connect()
	bob := s.connect()
	roomID := s.createRoom(alice, "Alice")
	s.joinRoom(bob, roomID, "Bob")
	alice.expect(model.EventUserJoined, nil)

	alice.send(model.EventGameInvite, model.GameRequest{RoomID: roomID, GameID: model.GameRPS}, 0)
	var invite model.GameInvitePayload
	bob.expect(model.EventGameInvite, &invite)
	s.Equal(alice.id, invite.FromID)

	bob.send(model.EventGameAccept, model.GameRequest{RoomID: roomID, GameID: model.GameRPS}, 0)
	var start model.GameSyncStartPayload
	alice.expect(model.EventGameSyncStart, &start)
	bob.expect(model.EventGameSyncStart, nil)
	s.Equal("start-sync", start.Action)
	s.Equal([2]model.ConnID{alice.id, bob.id}, start.GameState.Header().Users)

	alice.send(model.EventGameAction, model.GameRequest{RoomID: roomID, GameID: model.GameRPS, Action: json.RawMessage(`{"pick":"rock"}`)}, 0)
	alice.expect(model.EventGameStateUpdate, nil)
	bob.expect(model.EventGameStateUpdate, nil)

	bob.send(model.EventGameAction, model.GameRequest{RoomID: roomID, GameID: model.GameRPS, Action: json.RawMessage(`{"pick":"Paper"}`)}, 0)
	var state model.GameState
	alice.expect(model.EventGameStateUpdate, &state)
	s.Require().NotNil(state.RPS)
	s.True(state.RPS.Revealed)
	s.Equal(model.Mark(bob.id), state.RPS.Result)
}

// Test: joining an unknown room answers the ack with an error
func (s *IntegrationSuite) TestJoinUnknownRoomReportsError() {
	c := s.connect()
	c.send(model.EventJoinRoom, model.JoinRoomRequest{RoomID: "NOPE0000", DisplayName: "Zed"}, 7)

	var ack model.JoinRoomError
	env := c.expect(model.EventAck, &ack)
	s.Equal(int64(7), env.Ack)
	s.Equal("Room not found", ack.Error)
}
