package model

import "encoding/json"

// EventName identifies a wire event
type EventName string

// Inbound events
const (
	EventCreateRoom         EventName = "create-room"
	EventJoinRoom           EventName = "join-room"
	EventCallUser           EventName = "call-user"
	EventAnswerCall         EventName = "answer-call"
	EventIceCandidate       EventName = "ice-candidate"
	EventSendMessage        EventName = "send-message"
	EventFileShare          EventName = "file-share"
	EventWatchSync          EventName = "watch-sync"
	EventWatchControl       EventName = "watch-control"
	EventGameInvite         EventName = "game-invite"
	EventGameAccept         EventName = "game-accept"
	EventGameAction         EventName = "game-action"
	EventGameReset          EventName = "game-reset"
	EventScreenShareStarted EventName = "screen-share-started"
	EventScreenShareStopped EventName = "screen-share-stopped"
)

// Outbound events. Relayed events reuse their inbound name where the
// protocol does (ice-candidate, watch-control, game-invite, screen-share-*).
const (
	EventMe              EventName = "me"
	EventAck             EventName = "ack"
	EventUserJoined      EventName = "user-joined"
	EventUserLeft        EventName = "user-left"
	EventIncomingCall    EventName = "incoming-call"
	EventCallAccepted    EventName = "call-accepted"
	EventNewMessage      EventName = "new-message"
	EventFileReceived    EventName = "file-received"
	EventWatchUpdate     EventName = "watch-update"
	EventGameSyncStart   EventName = "game-sync-start"
	EventGameStateUpdate EventName = "game-state-update"
)

// Event is an outbound event addressed to one connection. Ack is non-zero
// only on ack replies and echoes the number the client sent.
type Event struct {
	Name    EventName
	Payload any
	Ack     int64
}

// Inbound is a decoded client event. Ack is zero when the client did not
// ask for an acknowledgement.
type Inbound struct {
	Name EventName
	Data json.RawMessage
	Ack  int64
}

// Inbound payloads

type CreateRoomRequest struct {
	DisplayName string `json:"displayName,omitempty"`
}

type JoinRoomRequest struct {
	RoomID      RoomID `json:"roomId"`
	DisplayName string `json:"displayName"`
}

type CallUserRequest struct {
	To          ConnID          `json:"to"`
	Payload     json.RawMessage `json:"payload"`
	DisplayName string          `json:"displayName"`
}

type AnswerCallRequest struct {
	To      ConnID          `json:"to"`
	Payload json.RawMessage `json:"payload"`
}

type IceCandidateRequest struct {
	To        ConnID          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

type SendMessageRequest struct {
	RoomID      RoomID `json:"roomId"`
	Text        string `json:"text"`
	DisplayName string `json:"displayName"`
}

type FileShareRequest struct {
	RoomID    RoomID          `json:"roomId"`
	FileName  string          `json:"fileName"`
	FileType  string          `json:"fileType"`
	FileSize  int64           `json:"fileSize"`
	FileBytes json.RawMessage `json:"fileBytes"`
}

type WatchSyncRequest struct {
	RoomID RoomID `json:"roomId"`
	URL    string `json:"url"`
}

type WatchControlRequest struct {
	RoomID RoomID  `json:"roomId"`
	Action string  `json:"action"`
	Time   float64 `json:"time"`
}

// GameRequest covers game-invite, game-accept, game-action and game-reset
type GameRequest struct {
	RoomID RoomID          `json:"roomId"`
	GameID GameID          `json:"gameId"`
	Action json.RawMessage `json:"action,omitempty"`
}

type ScreenShareRequest struct {
	RoomID RoomID `json:"roomId"`
}

// Outbound payloads

type MePayload struct {
	ID ConnID `json:"id"`
}

type CreateRoomAck struct {
	RoomID RoomID `json:"roomId"`
}

// JoinRoomAck is the late-join catch-up snapshot
type JoinRoomAck struct {
	Success           bool          `json:"success"`
	OtherParticipants []Participant `json:"otherParticipants"`
	Messages          []Message     `json:"messages"`
	ActiveGame        *GameState    `json:"activeGame"`
	WatchURL          string        `json:"watchUrl,omitempty"`
}

// JoinRoomError is the ack for a refused join
type JoinRoomError struct {
	Error string `json:"error"`
}

// ParticipantPayload is sent with user-joined and user-left
type ParticipantPayload struct {
	ID          ConnID `json:"id"`
	DisplayName string `json:"displayName"`
}

type IncomingCallPayload struct {
	Payload     json.RawMessage `json:"payload"`
	From        ConnID          `json:"from"`
	DisplayName string          `json:"displayName"`
}

type CallAcceptedPayload struct {
	Payload json.RawMessage `json:"payload"`
	From    ConnID          `json:"from"`
}

type IceCandidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
	From      ConnID          `json:"from"`
}

type FileReceivedPayload struct {
	From      ConnID          `json:"from"`
	FromName  string          `json:"fromName"`
	FileName  string          `json:"fileName"`
	FileType  string          `json:"fileType"`
	FileSize  int64           `json:"fileSize"`
	FileBytes json.RawMessage `json:"fileBytes"`
}

type WatchUpdatePayload struct {
	URL      string `json:"url"`
	From     ConnID `json:"from"`
	FromName string `json:"fromName"`
}

type WatchControlPayload struct {
	Action   string  `json:"action"`
	Time     float64 `json:"time"`
	From     ConnID  `json:"from"`
	FromName string  `json:"fromName"`
}

type GameInvitePayload struct {
	GameID   GameID `json:"gameId"`
	FromName string `json:"fromName"`
	FromID   ConnID `json:"fromId"`
}

type GameSyncStartPayload struct {
	Action    string     `json:"action"` // always "start-sync"
	GameID    GameID     `json:"gameId"`
	GameState *GameState `json:"gameState"`
}

type ScreenSharePayload struct {
	From     ConnID `json:"from"`
	FromName string `json:"fromName"`
}
