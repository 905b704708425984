// Package messagescmder provides the messages command for sending and
// listing conversation messages.
package messagescmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/cmd/wb/cliclient"
	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

const messagesLongDesc string = `Send and list conversation messages.

Subcommands:
  wb messages send <text>...    Send one or more chat messages, in order
  wb messages list              List the conversation's messages

The target conversation comes from --conversation, or from the active
conversation selected with "wb conversations use".

Examples:
  wb messages send "hello there"
  wb messages send "first" "second" "third"
  wb messages list --limit 20
  wb messages list --type note --render`

const messagesShortDesc string = "Send and list conversation messages"

func NewMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"msg"},
		Short:   messagesShortDesc,
		Long:    messagesLongDesc,
	}

	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newListCmd())

	cliclient.AddFlags(cmd)

	return cmd
}

func loadSettings(cmd *cobra.Command) (*cliclient.Settings, error) {
	return cliclient.Load(cmd)
}

func newSendCmd() *cobra.Command {
	var conversationID string
	var messageType string

	cmd := &cobra.Command{
		Use:   "send <text>...",
		Short: "Send one or more chat messages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conversationID, err = settings.ResolveConversationID(conversationID)
			if err != nil {
				return err
			}

			messages := make([]workbench.NewConversationMessage, 0, len(args))
			for _, text := range args {
				messages = append(messages, workbench.NewConversationMessage{
					Content:     text,
					MessageType: workbench.MessageType(messageType),
				})
			}

			sent, err := settings.Conversation(conversationID).SendMessages(cmd.Context(), messages...)
			if err != nil {
				return fmt.Errorf("sending messages: %w", err)
			}

			for _, msg := range sent.Messages {
				fmt.Printf("  %s Sent %s\n",
					cliui.SuccessMark,
					cliui.IDStyle.Render(msg.ID.String()),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")
	cmd.Flags().StringVar(&messageType, "type", string(workbench.MessageTypeChat), "Message type (chat, note, notice, command)")

	return cmd
}

func newListCmd() *cobra.Command {
	var conversationID string
	var messageTypes []string
	var limit int
	var render bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the conversation's messages",
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

			filter := workbench.MessageFilter{Limit: limit}
			for _, mt := range messageTypes {
				filter.MessageTypes = append(filter.MessageTypes, workbench.MessageType(mt))
			}

			list, err := settings.Conversation(conversationID).Messages(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("listing messages: %w", err)
			}

			if len(list.Messages) == 0 {
				fmt.Printf("  %s\n", cliui.DimStyle.Render("No messages."))
				return nil
			}

			for _, msg := range list.Messages {
				printMessage(msg, render)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")
	cmd.Flags().StringSliceVar(&messageTypes, "type", nil, "Filter by message type (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of messages")
	cmd.Flags().BoolVar(&render, "render", false, "Render message content as markdown")

	return cmd
}

func printMessage(msg workbench.ConversationMessage, render bool) {
	fmt.Printf("  %s %s %s\n",
		cliui.DimStyle.Render(msg.Timestamp.Format("15:04:05")),
		cliui.RoleStyle.Render("["+msg.Sender.ParticipantID+"]"),
		cliui.IDStyle.Render(msg.ID.String()),
	)

	content := msg.Content
	if render {
		if rendered, err := cliui.RenderMarkdown(content); err == nil {
			content = rendered
		}
	}
	fmt.Printf("    %s\n", cliui.PreviewStyle.Render(content))
}
