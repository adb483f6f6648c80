package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/roomhub/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Conn wraps one websocket connection. It is the registry sink for that
// connection: events are queued on send and written by writePump.
type Conn struct {
	ws     *websocket.Conn
	send   chan model.Event
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func newConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	return &Conn{
		ws:     ws,
		send:   make(chan model.Event, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues an event without blocking. A full queue or closed connection
// drops the event.
func (c *Conn) Send(event model.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// Close stops the write pump and closes the socket
func (c *Conn) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// readPump decodes frames and hands them to handle until the peer goes away.
// Frames are handled one at a time, in arrival order.
func (c *Conn) readPump(ctx context.Context, maxMessageBytes int64, handle func(ctx context.Context, in model.Inbound)) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, frame, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		in, err := Decode(frame)
		if err != nil {
			c.logger.Debug("malformed frame dropped", slog.String("error", err.Error()))
			continue
		}
		handle(ctx, in)
	}
}

// writePump writes queued events and keeps the connection alive with pings
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case event := <-c.send:
			frame, err := Encode(event)
			if err != nil {
				c.logger.Error("failed to encode event",
					slog.String("event", string(event.Name)),
					slog.String("error", err.Error()))
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
