package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/roomhub/internal/model"
)

func newJoinCmd() *cobra.Command {
	var (
		name      string
		maxEvents int
	)

	cmd := &cobra.Command{
		Use:   "join <id>",
		Short: "Join a room and stream its events",
		Long: `Join a room over the websocket endpoint and stream events in real-time.

Events include:
  - user-joined / user-left: room membership changed
  - new-message: chat message
  - file-received: file shared by a participant
  - watch-update / watch-control: shared video state
  - game-invite / game-sync-start / game-state-update: games
  - incoming-call / call-accepted / ice-candidate: call signaling addressed to you

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			wsURL, err := cfg.WebSocketURL()
			if err != nil {
				return err
			}
			session, err := Dial(ctx, wsURL)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			roomID := model.RoomID(strings.ToUpper(args[0]))
			raw, err := session.Request(model.EventJoinRoom, model.JoinRoomRequest{RoomID: roomID, DisplayName: name})
			if err != nil {
				return err
			}
			ack, err := parseJoinAck(raw)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(JoinedRoom{RoomID: roomID, ConnID: session.ID(), JoinRoomAck: ack})

			return streamEvents(ctx, session, out, maxEvents)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to join with")
	cmd.Flags().IntVar(&maxEvents, "max-events", 0, "Stop after this many events (0 = until interrupted)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// parseJoinAck turns a join-room ack into either the room snapshot or the
// server's refusal
func parseJoinAck(raw json.RawMessage) (model.JoinRoomAck, error) {
	var refusal model.JoinRoomError
	if err := json.Unmarshal(raw, &refusal); err == nil && refusal.Error != "" {
		return model.JoinRoomAck{}, errors.New(refusal.Error)
	}

	var ack model.JoinRoomAck
	if err := json.Unmarshal(raw, &ack); err != nil || !ack.Success {
		return model.JoinRoomAck{}, fmt.Errorf("unexpected join-room reply: %s", raw)
	}
	return ack, nil
}

// streamEvents prints pushed events until ctx ends, the server closes the
// connection, or limit events have been printed
func streamEvents(ctx context.Context, session *Session, out *Output, limit int) error {
	session.CloseOnDone(ctx)

	for n := 0; limit == 0 || n < limit; n++ {
		env, err := session.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSessionClosed) {
				if cfg.Output != "json" {
					out.PrintMessage("Disconnected")
				}
				return nil
			}
			return err
		}
		out.PrintEvent(time.Now(), env.Event, env.Data)
	}
	return nil
}
