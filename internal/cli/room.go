package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/roomhub/internal/api/response"
	"github.com/mcoot/roomhub/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomShowCmd())
	cmd.AddCommand(newRoomCreateCmd())

	return cmd
}

func newRoomShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a live room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Get(cmd.Context(), "/api/v1/rooms/"+url.PathEscape(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoomCreateCmd() *cobra.Command {
	var (
		name      string
		exit      bool
		maxEvents int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a room and stay in it",
		Long: `Create a room over the websocket endpoint and print its id.

The room lives only while it has participants, so the command stays connected
and streams room events until Ctrl+C. With --exit it leaves straight away and
the room is discarded.`,
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

			raw, err := session.Request(model.EventCreateRoom, model.CreateRoomRequest{DisplayName: name})
			if err != nil {
				return err
			}
			var ack model.CreateRoomAck
			if err := json.Unmarshal(raw, &ack); err != nil || ack.RoomID == "" {
				return fmt.Errorf("unexpected create-room reply: %s", raw)
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(CreatedRoom{RoomID: ack.RoomID, ConnID: session.ID()})
			if exit {
				return nil
			}

			if cfg.Verbose {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for participants, press Ctrl+C to close the room")
			}
			return streamEvents(ctx, session, out, maxEvents)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name of the host")
	cmd.Flags().BoolVar(&exit, "exit", false, "Leave immediately after printing the room id")
	cmd.Flags().IntVar(&maxEvents, "max-events", 0, "Stop after this many events (0 = until interrupted)")

	return cmd
}
