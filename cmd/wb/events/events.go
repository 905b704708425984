// Package eventscmder provides the events command for tailing a
// conversation's server-sent event stream.
package eventscmder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/cmd/wb/cliclient"
	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/sse"
)

const eventsLongDesc string = `Tail a conversation's event stream.

Connects to the conversation's server-sent event endpoint and prints each
event as it arrives. Malformed lines and undecodable payloads are reported
and skipped; the stream keeps going until the server closes it or the
command is interrupted.

Examples:
  wb events
  wb events --conversation 6a3e1c42-8f0a-4a3e-9d21-0f4c6f1d2b11
  wb events --json`

const eventsShortDesc string = "Tail a conversation's event stream"

func NewEventsCmd() *cobra.Command {
	var conversationID string
	var rawJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: eventsShortDesc,
		Long:  eventsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conversationID, err = settings.ResolveConversationID(conversationID)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stream, err := settings.Conversation(conversationID).Events(ctx, settings.EventsURL(conversationID))
			if err != nil {
				return fmt.Errorf("opening event stream: %w", err)
			}
			defer stream.Close()

			fmt.Printf("  %s\n", cliui.DimStyle.Render("Listening for events. Ctrl-C to stop."))

			for {
				event, err := stream.Next()
				if err != nil {
					var lineErr *sse.LineError
					var dataErr *sse.DataError
					switch {
					case errors.As(err, &lineErr), errors.As(err, &dataErr):
						fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
						continue
					case ctx.Err() != nil:
						return nil
					default:
						return fmt.Errorf("reading event stream: %w", err)
					}
				}
				if event == nil {
					return nil
				}

				printEvent(event, rawJSON)
			}
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")
	cmd.Flags().BoolVar(&rawJSON, "json", false, "Print raw event payloads")
	cliclient.AddFlags(cmd)

	return cmd
}

func loadSettings(cmd *cobra.Command) (*cliclient.Settings, error) {
	return cliclient.Load(cmd)
}

func printEvent(event *sse.Event, rawJSON bool) {
	if rawJSON {
		fmt.Printf("%s\n", event.Data)
		return
	}

	// Pull a few well-known envelope fields for the one-line summary.
	var envelope struct {
		Timestamp string `json:"timestamp"`
		Event     string `json:"event"`
	}
	_ = json.Unmarshal(event.Data, &envelope)

	name := event.Type
	if name == "" {
		name = envelope.Event
	}

	fmt.Printf("  %s %s %s\n",
		cliui.DimStyle.Render(envelope.Timestamp),
		cliui.KeyStyle.Render(name),
		cliui.IDStyle.Render(event.ID),
	)
}
