// Package conversationscmder provides the conversations command for
// listing and managing workbench conversations.
package conversationscmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/cmd/wb/cliclient"
	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/dotdir"
	"github.com/andrehe001/semanticworkbench/pkg/utils"
	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

const conversationsLongDesc string = `Manage workbench conversations.

Subcommands:
  wb conversations list              List conversations
  wb conversations create            Create a conversation
  wb conversations show <id>         Show one conversation
  wb conversations use <id>          Select the active conversation
  wb conversations delete <id>       Delete a conversation

"use" stores the conversation ID as session state in the .workbench/
directory so message, file, and event commands can omit --conversation.`

const conversationsShortDesc string = "Manage workbench conversations"

func NewConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   conversationsShortDesc,
		Long:    conversationsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newUseCmd())
	cmd.AddCommand(newDeleteCmd())

	cliclient.AddFlags(cmd)

	return cmd
}

func loadSettings(cmd *cobra.Command) (*cliclient.Settings, error) {
	return cliclient.Load(cmd)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			list, err := settings.Conversations().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing conversations: %w", err)
			}

			if len(list.Conversations) == 0 {
				fmt.Printf("  %s\n", cliui.DimStyle.Render("No conversations."))
				return nil
			}

			for _, conv := range list.Conversations {
				fmt.Printf("  %s  %s\n",
					cliui.IDStyle.Render(conv.ID.String()),
					cliui.ValueStyle.Render(utils.Truncate(conv.Title, 60)),
				)
			}
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conv, err := settings.Conversations().Create(cmd.Context(), workbench.NewConversation{Title: title})
			if err != nil {
				return fmt.Errorf("creating conversation: %w", err)
			}

			fmt.Printf("  %s Created %s\n",
				cliui.SuccessMark,
				cliui.IDStyle.Render(conv.ID.String()),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Conversation title")

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conv, err := settings.Conversation(args[0]).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching conversation: %w", err)
			}

			printConversation(cmd.Context(), settings, conv)
			return nil
		},
	}
}

func printConversation(ctx context.Context, settings *cliclient.Settings, conv *workbench.Conversation) {
	fmt.Printf("\n  %s  %s\n", cliui.KeyStyle.Render("ID:     "), cliui.IDStyle.Render(conv.ID.String()))
	fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Title:  "), cliui.ValueStyle.Render(conv.Title))
	if conv.OwnerID != "" {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Owner:  "), cliui.ValueStyle.Render(conv.OwnerID))
	}
	if !conv.CreatedDatetime.IsZero() {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Created:"), cliui.DimStyle.Render(conv.CreatedDatetime.Format("2006-01-02 15:04:05")))
	}

	participants, err := settings.Conversation(conv.ID.String()).Participants(ctx, false)
	if err == nil && len(participants.Participants) > 0 {
		fmt.Printf("  %s\n", cliui.KeyStyle.Render("Participants:"))
		for _, p := range participants.Participants {
			fmt.Printf("    %s %s\n",
				cliui.RoleStyle.Render("["+string(p.Role)+"]"),
				cliui.ValueStyle.Render(p.ID),
			)
		}
	}
	fmt.Println()
}

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Select the active conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			// Verify the conversation exists before pinning it.
			conv, err := settings.Conversation(args[0]).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching conversation: %w", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			state := &dotdir.SessionState{
				ConversationID: conv.ID.String(),
				AssistantID:    settings.AssistantID,
			}
			if err := dotdir.NewManager().SaveSession(state, configDir); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}

			fmt.Printf("  %s Using conversation %s\n",
				cliui.SuccessMark,
				cliui.IDStyle.Render(conv.ID.String()),
			)
			return nil
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			if err := settings.Conversation(args[0]).Delete(cmd.Context()); err != nil {
				return fmt.Errorf("deleting conversation: %w", err)
			}

			fmt.Printf("  %s Deleted %s\n",
				cliui.SuccessMark,
				cliui.IDStyle.Render(args[0]),
			)
			return nil
		},
	}
}
