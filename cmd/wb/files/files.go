// Package filescmder provides the files command for managing conversation
// file attachments.
package filescmder

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/cmd/wb/cliclient"
	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

const filesLongDesc string = `Manage conversation file attachments.

Subcommands:
  wb files put <path>          Upload a file (re-uploads create new versions)
  wb files get <filename>      Download a file to stdout or --output
  wb files list                List the conversation's files
  wb files delete <filename>   Delete a file

The target conversation comes from --conversation, or from the active
conversation selected with "wb conversations use".

Examples:
  wb files put report.pdf
  wb files get report.pdf --output ./report.pdf
  wb files list --prefix logs/`

const filesShortDesc string = "Manage conversation file attachments"

func NewFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: filesShortDesc,
		Long:  filesLongDesc,
	}

	cmd.AddCommand(newPutCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newDeleteCmd())

	cliclient.AddFlags(cmd)

	return cmd
}

func loadSettings(cmd *cobra.Command) (*cliclient.Settings, error) {
	return cliclient.Load(cmd)
}

func newPutCmd() *cobra.Command {
	var conversationID string
	var name string

	cmd := &cobra.Command{
		Use:   "put <path>",
		Short: "Upload a file to the conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conversationID, err = settings.ResolveConversationID(conversationID)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			filename := name
			if filename == "" {
				filename = filepath.Base(args[0])
			}
			contentType := mime.TypeByExtension(filepath.Ext(filename))

			var stored *workbench.File
			err = cliui.Step(os.Stdout, fmt.Sprintf("Uploading %s", filename), func() error {
				var uploadErr error
				stored, uploadErr = settings.Conversation(conversationID).WriteFile(cmd.Context(), filename, f, contentType)
				return uploadErr
			})
			if err != nil {
				return fmt.Errorf("uploading %s: %w", filename, err)
			}

			fmt.Printf("  %s %s\n",
				cliui.ValueStyle.Render(stored.Filename),
				cliui.DimStyle.Render(fmt.Sprintf("(version %d, %d bytes)", stored.CurrentVersion, stored.FileSize)),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")
	cmd.Flags().StringVar(&name, "name", "", "Store under a different filename")

	return cmd
}

func newGetCmd() *cobra.Command {
	var conversationID string
	var output string

	cmd := &cobra.Command{
		Use:   "get <filename>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conversationID, err = settings.ResolveConversationID(conversationID)
			if err != nil {
				return err
			}

			body, err := settings.Conversation(conversationID).ReadFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("downloading %s: %w", args[0], err)
			}
			defer body.Close()

			var dst io.Writer = os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				dst = f
			}

			if _, err := io.Copy(dst, body); err != nil {
				return fmt.Errorf("writing file: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func newListCmd() *cobra.Command {
	var conversationID string
	var prefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the conversation's files",
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

			list, err := settings.Conversation(conversationID).Files(cmd.Context(), prefix)
			if err != nil {
				return fmt.Errorf("listing files: %w", err)
			}

			if len(list.Files) == 0 {
				fmt.Printf("  %s\n", cliui.DimStyle.Render("No files."))
				return nil
			}

			for _, f := range list.Files {
				fmt.Printf("  %s %s\n",
					cliui.ValueStyle.Render(f.Filename),
					cliui.DimStyle.Render(fmt.Sprintf("(v%d, %d bytes)", f.CurrentVersion, f.FileSize)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only list files whose name starts with the prefix")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "delete <filename>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			conversationID, err = settings.ResolveConversationID(conversationID)
			if err != nil {
				return err
			}

			if err := settings.Conversation(conversationID).DeleteFile(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting %s: %w", args[0], err)
			}

			fmt.Printf("  %s Deleted %s\n",
				cliui.SuccessMark,
				cliui.ValueStyle.Render(args[0]),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Conversation ID (defaults to the active conversation)")

	return cmd
}
