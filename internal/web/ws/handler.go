package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/roomhub/internal/model"
	"github.com/mcoot/roomhub/internal/services/registry"
)

// DefaultMaxMessageBytes bounds one inbound frame; file-share payloads travel inline
const DefaultMaxMessageBytes = 50 << 20

// Coordinator is the session layer the handler drives
type Coordinator interface {
	Connect(sink registry.Sink) model.ConnID
	Handle(ctx context.Context, id model.ConnID, in model.Inbound)
	Disconnect(ctx context.Context, id model.ConnID)
}

// Config holds transport settings
type Config struct {
	// AllowedOrigin is matched against the Origin header; "" or "*" allows any
	AllowedOrigin   string
	MaxMessageBytes int64
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		AllowedOrigin:   "*",
		MaxMessageBytes: DefaultMaxMessageBytes,
	}
}

// Handler upgrades HTTP requests to websocket sessions
type Handler struct {
	coordinator Coordinator
	cfg         Config
	upgrader    websocket.Upgrader
	logger      *slog.Logger

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// NewHandler creates a new Handler
func NewHandler(coordinator Coordinator, cfg Config, logger *slog.Logger) *Handler {
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = DefaultMaxMessageBytes
	}
	h := &Handler{
		coordinator: coordinator,
		cfg:         cfg,
		logger:      logger.With(slog.String("component", "ws")),
		conns:       make(map[*Conn]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  64 * 1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.cfg.AllowedOrigin == "" || h.cfg.AllowedOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	// non-browser clients send no Origin
	return origin == "" || origin == h.cfg.AllowedOrigin
}

// ServeHTTP runs one connection for its whole lifetime
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	conn := newConn(socket, h.logger)
	id := h.coordinator.Connect(conn)
	conn.logger = h.logger.With(slog.String("conn_id", string(id)))
	h.track(conn)
	defer h.untrack(conn)

	go conn.writePump()

	ctx := context.WithoutCancel(r.Context())
	conn.readPump(ctx, h.cfg.MaxMessageBytes, func(ctx context.Context, in model.Inbound) {
		h.coordinator.Handle(ctx, id, in)
	})

	h.coordinator.Disconnect(ctx, id)
}

func (h *Handler) track(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c] = struct{}{}
}

func (h *Handler) untrack(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, c)
}

// CloseAll closes every open connection. Each one then disconnects through
// the normal path, so rooms are torn down and peers notified.
func (h *Handler) CloseAll() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	if len(conns) > 0 {
		h.logger.Info("closed websocket connections", slog.Int("count", len(conns)))
	}
}

// Open returns the number of open connections
func (h *Handler) Open() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
