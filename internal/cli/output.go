package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

// PrintEvent outputs one pushed event, as a JSON line or a timestamped text line
func (o *Output) PrintEvent(at time.Time, event string, data json.RawMessage) {
	if o.format == "json" {
		line, _ := json.Marshal(StreamedEvent{Time: at, Event: event, Data: data})
		_, _ = fmt.Fprintln(o.w, string(line))
		return
	}

	display := strings.ReplaceAll(string(data), "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	_, _ = fmt.Fprintf(o.w, "[%s] %s: %s\n", at.Format("2006-01-02 15:04:05"), event, display)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case response.Stats:
		_, _ = fmt.Fprintf(o.w, "Rooms: %d\nConnections: %d\n", v.Rooms, v.Connections)
	case response.Room:
		o.printRoom(v)
	case CreatedRoom:
		_, _ = fmt.Fprintf(o.w, "Room: %s\n", v.RoomID)
	case JoinedRoom:
		o.printJoined(v)
	default:
		o.printJSON(data)
	}
}

// StreamedEvent is one line of join/create event output
type StreamedEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// CreatedRoom is printed once a room has been created
type CreatedRoom struct {
	RoomID model.RoomID `json:"roomId"`
	ConnID model.ConnID `json:"connId"`
}

// JoinedRoom is printed once a join has been acknowledged
type JoinedRoom struct {
	RoomID model.RoomID `json:"roomId"`
	ConnID model.ConnID `json:"connId"`
	model.JoinRoomAck
}

func (o *Output) printRoom(r response.Room) {
	_, _ = fmt.Fprintf(o.w, "Room: %s\n", r.ID)
	_, _ = fmt.Fprintf(o.w, "Messages: %d\n", r.MessageCount)
	if r.WatchURL != "" {
		_, _ = fmt.Fprintf(o.w, "Watching: %s\n", r.WatchURL)
	}
	if r.ActiveGame != "" {
		_, _ = fmt.Fprintf(o.w, "Game: %s\n", r.ActiveGame)
	}
	_, _ = fmt.Fprintf(o.w, "Participants (%d/%d):\n", len(r.Participants), model.MaxParticipants)
	for _, p := range r.Participants {
		name := p.DisplayName
		if name == "" {
			name = "(unnamed)"
		}
		_, _ = fmt.Fprintf(o.w, "  - %s (%s)\n", name, p.ID)
	}
}

func (o *Output) printJoined(j JoinedRoom) {
	_, _ = fmt.Fprintf(o.w, "Joined room %s as %s\n", j.RoomID, j.ConnID)
	if len(j.OtherParticipants) > 0 {
		names := make([]string, len(j.OtherParticipants))
		for i, p := range j.OtherParticipants {
			names[i] = p.DisplayName
		}
		_, _ = fmt.Fprintf(o.w, "Already here: %s\n", strings.Join(names, ", "))
	}
	for _, m := range j.Messages {
		_, _ = fmt.Fprintf(o.w, "  <%s> %s\n", m.AuthorName, m.Text)
	}
	if j.WatchURL != "" {
		_, _ = fmt.Fprintf(o.w, "Watching: %s\n", j.WatchURL)
	}
	if j.ActiveGame != nil {
		_, _ = fmt.Fprintf(o.w, "Game in progress: %s\n", j.ActiveGame.ID())
	}
}
