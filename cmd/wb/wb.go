// Package wbcmder
package wbcmder

import (
	"github.com/spf13/cobra"

	assistantscmder "github.com/andrehe001/semanticworkbench/cmd/wb/assistants"
	configcmder "github.com/andrehe001/semanticworkbench/cmd/wb/config"
	conversationscmder "github.com/andrehe001/semanticworkbench/cmd/wb/conversations"
	eventscmder "github.com/andrehe001/semanticworkbench/cmd/wb/events"
	filescmder "github.com/andrehe001/semanticworkbench/cmd/wb/files"
	messagescmder "github.com/andrehe001/semanticworkbench/cmd/wb/messages"
	mockcmder "github.com/andrehe001/semanticworkbench/cmd/wb/mock"
	"github.com/andrehe001/semanticworkbench/pkg/utils"
)

const wbLongDesc string = `wb is a command line client for the semantic workbench service.

Work with conversations, messages, files, and assistants:
  wb conversations list        List conversations
  wb messages send <text>      Send a chat message
  wb events                    Tail a conversation's event stream
  wb mock                      Run an in-memory workbench service

Identity comes from config.toml in the .workbench/ directory (or
WORKBENCH_* environment variables): a user token, or an assistant
service ID and API key.`

const wbShortDesc string = "wb - Semantic Workbench client"

func NewWbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "wb",
		Short:   wbShortDesc,
		Long:    wbLongDesc,
		Version: utils.Version,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .workbench/ directory")

	// Add subcommands
	cmd.AddCommand(conversationscmder.NewConversationsCmd())
	cmd.AddCommand(messagescmder.NewMessagesCmd())
	cmd.AddCommand(filescmder.NewFilesCmd())
	cmd.AddCommand(eventscmder.NewEventsCmd())
	cmd.AddCommand(assistantscmder.NewAssistantsCmd())
	cmd.AddCommand(mockcmder.NewMockCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())

	return cmd
}
