package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/roomhub/internal/api/apierr"
	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/model"
)

// RoomReader looks up room snapshots
type RoomReader interface {
	Get(ctx context.Context, id model.RoomID) (*model.Room, error)
}

// RoomHandler serves read-only room introspection
type RoomHandler struct {
	rooms RoomReader
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms RoomReader) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// Get handles GET /api/v1/rooms/{id}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.RoomID(strings.ToUpper(mux.Vars(r)["id"]))

	room, err := h.rooms.Get(r.Context(), id)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromModel(room))
}
