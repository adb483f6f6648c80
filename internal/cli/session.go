package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/web/ws"
)

// Session is a websocket connection to the server speaking the room protocol
type Session struct {
	conn    *websocket.Conn
	id      model.ConnID
	nextAck int64
	pending []ws.Envelope

	closeOnce sync.Once
	closeErr  error
}

// Dial connects and waits for the server to assign an identity
func Dial(ctx context.Context, wsURL string) (*Session, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", wsURL, err)
	}

	s := &Session{conn: conn}
	env, err := s.read()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if env.Event != string(model.EventMe) {
		_ = conn.Close()
		return nil, fmt.Errorf("expected %s, got %s", model.EventMe, env.Event)
	}

	var me model.MePayload
	if err := json.Unmarshal(env.Data, &me); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("decode identity: %w", err)
	}
	s.id = me.ID
	return s, nil
}

// ID returns the identity the server assigned
func (s *Session) ID() model.ConnID {
	return s.id
}

// Send emits an event without asking for an ack
func (s *Session) Send(event model.EventName, data any) error {
	return s.write(event, data, 0)
}

// Request emits an event and blocks until its ack arrives. Other events
// received meanwhile are kept for Next.
func (s *Session) Request(event model.EventName, data any) (json.RawMessage, error) {
	s.nextAck++
	ack := s.nextAck
	if err := s.write(event, data, ack); err != nil {
		return nil, err
	}

	for {
		env, err := s.read()
		if err != nil {
			return nil, err
		}
		if env.Event == string(model.EventAck) && env.Ack == ack {
			return env.Data, nil
		}
		s.pending = append(s.pending, env)
	}
}

// Next returns the next event pushed by the server
func (s *Session) Next() (ws.Envelope, error) {
	if len(s.pending) > 0 {
		env := s.pending[0]
		s.pending = s.pending[1:]
		return env, nil
	}
	return s.read()
}

// CloseOnDone closes the session when ctx ends, unblocking any pending read
func (s *Session) CloseOnDone(ctx context.Context) {
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
}

// Close sends a close frame and drops the connection. Safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteMessage(websocket.CloseMessage, msg)
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

func (s *Session) write(event model.EventName, data any, ack int64) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}
	if err := s.conn.WriteJSON(ws.Envelope{Event: string(event), Data: raw, Ack: ack}); err != nil {
		return fmt.Errorf("send %s: %w", event, err)
	}
	return nil
}

func (s *Session) read() (ws.Envelope, error) {
	var env ws.Envelope
	if err := s.conn.ReadJSON(&env); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return ws.Envelope{}, ErrSessionClosed
		}
		return ws.Envelope{}, fmt.Errorf("read: %w", err)
	}
	return env, nil
}

// ErrSessionClosed is returned once the server has closed the connection
var ErrSessionClosed = errors.New("session closed")
