package registry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/roomhub/internal/dependencies/clock"
	"github.com/mcoot/roomhub/internal/dependencies/identity"
	"github.com/mcoot/roomhub/internal/model"
)

// Sink receives outbound events for one connection. Send must not block;
// it reports false when the event was dropped.
type Sink interface {
	Send(event model.Event) bool
}

// Session is a snapshot of the metadata held for a connection
type Session struct {
	ID          model.ConnID
	DisplayName string
	RoomID      model.RoomID // empty when not in a room
	ConnectedAt time.Time
}

// InRoom reports whether the session is currently a member of a room
func (s Session) InRoom() bool {
	return s.RoomID != ""
}

type entry struct {
	session Session
	sink    Sink
}

// Registry maps connection identities to their sessions and sinks
type Registry struct {
	mu       sync.RWMutex
	sessions map[model.ConnID]*entry
	identity identity.Source
	clock    clock.Clock
	logger   *slog.Logger
}

// New creates a new Registry
func New(identity identity.Source, clock clock.Clock, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[model.ConnID]*entry),
		identity: identity,
		clock:    clock,
		logger:   logger.With(slog.String("component", "registry")),
	}
}

// Register mints a fresh identity for the sink and records its session
func (r *Registry) Register(sink Sink) Session {
	session := Session{
		ID:          r.identity.NewConnID(),
		ConnectedAt: r.clock.Now(),
	}

	r.mu.Lock()
	r.sessions[session.ID] = &entry{session: session, sink: sink}
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("connection registered",
		slog.String("conn_id", string(session.ID)),
		slog.Int("total_connections", total))
	return session
}

// Unregister forgets a connection, returning its final session
func (r *Registry) Unregister(id model.ConnID) (Session, bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return Session{}, false
	}
	r.logger.Info("connection unregistered",
		slog.String("conn_id", string(id)),
		slog.Duration("connection_duration", clock.Since(r.clock, e.session.ConnectedAt)),
		slog.Int("total_connections", total))
	return e.session, true
}

// Get returns the session for an identity
func (r *Registry) Get(id model.ConnID) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return Session{}, model.ErrConnectionNotFound
	}
	return e.session, nil
}

// SetRoom records the room a connection is in; empty clears it
func (r *Registry) SetRoom(id model.ConnID, roomID model.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	e.session.RoomID = roomID
	return nil
}

// SetDisplayName records the name the connection joined with
func (r *Registry) SetDisplayName(id model.ConnID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return model.ErrConnectionNotFound
	}
	e.session.DisplayName = name
	return nil
}

// Deliver hands an event to a connection's sink. It returns false when the
// identity is not connected or the sink dropped the event.
func (r *Registry) Deliver(id model.ConnID, event model.Event) bool {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		r.logger.Debug("delivery to unknown connection dropped",
			slog.String("conn_id", string(id)),
			slog.String("event", string(event.Name)))
		return false
	}

	if !e.sink.Send(event) {
		r.logger.Warn("event dropped - connection buffer full",
			slog.String("conn_id", string(id)),
			slog.String("event", string(event.Name)))
		return false
	}
	return true
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
