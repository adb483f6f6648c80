package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/roomhub/internal/api/apierr"
	"github.com/mcoot/roomhub/internal/api/handler"
	"github.com/mcoot/roomhub/internal/api/middleware"
	sharedmw "github.com/mcoot/roomhub/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	Rooms         handler.RoomReader
	Stats         handler.StatsSource
	WebSocket     http.Handler
	AllowedOrigin string
}

// NewRouter creates a new router with the introspection API and the
// websocket endpoint
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(apierr.NotFound)

	roomHandler := handler.NewRoomHandler(cfg.Rooms)
	statsHandler := handler.NewStatsHandler(cfg.Stats)

	// Panics surface in the same JSON shape as every other API failure
	r.Use(sharedmw.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.Write(w, apierr.ErrInternal)
	}))
	r.Use(sharedmw.Logging(cfg.Logger, "/api/v1/health"))

	r.HandleFunc("/", handler.Banner).Methods(http.MethodGet)
	r.Handle("/ws", cfg.WebSocket).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.CORS(cfg.AllowedOrigin))
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/stats", statsHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/rooms/{id}", roomHandler.Get).Methods(http.MethodGet, http.MethodOptions)

	return r
}
