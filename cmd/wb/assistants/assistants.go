// Package assistantscmder provides the assistants command for managing
// workbench assistants and assistant-service registrations.
package assistantscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/cmd/wb/cliclient"
	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/utils"
	"github.com/andrehe001/semanticworkbench/pkg/workbench"
)

const assistantsLongDesc string = `Manage workbench assistants.

Subcommands:
  wb assistants list                 List assistants
  wb assistants create               Create an assistant
  wb assistants delete <id>          Delete an assistant
  wb assistants services             List registered assistant services
  wb assistants register <url>       Refresh this service's registration

"register" uses the configured identity.assistant_service_id and
identity.api_key credentials.

Examples:
  wb assistants create --name echo --service-id echo-assistant.example
  wb assistants register http://localhost:3001 --expires 300`

const assistantsShortDesc string = "Manage workbench assistants"

func NewAssistantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assistants",
		Short: assistantsShortDesc,
		Long:  assistantsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newServicesCmd())
	cmd.AddCommand(newRegisterCmd())

	cliclient.AddFlags(cmd)

	return cmd
}

func loadSettings(cmd *cobra.Command) (*cliclient.Settings, error) {
	return cliclient.Load(cmd)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List assistants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			list, err := settings.Assistants().List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing assistants: %w", err)
			}

			if len(list.Assistants) == 0 {
				fmt.Printf("  %s\n", cliui.DimStyle.Render("No assistants."))
				return nil
			}

			for _, a := range list.Assistants {
				fmt.Printf("  %s  %s %s\n",
					cliui.IDStyle.Render(a.ID.String()),
					cliui.ValueStyle.Render(utils.Truncate(a.Name, 40)),
					cliui.DimStyle.Render("("+a.AssistantServiceID+")"),
				)
			}
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var name string
	var serviceID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			if serviceID == "" {
				serviceID = settings.AssistantServiceID
			}

			assistant, err := settings.Assistants().Create(cmd.Context(), workbench.NewAssistant{
				Name:               name,
				AssistantServiceID: serviceID,
			})
			if err != nil {
				return fmt.Errorf("creating assistant: %w", err)
			}

			fmt.Printf("  %s Created %s\n",
				cliui.SuccessMark,
				cliui.IDStyle.Render(assistant.ID.String()),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Assistant name")
	cmd.Flags().StringVar(&serviceID, "service-id", "", "Assistant service ID (defaults to the configured identity)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			if err := settings.Assistants().Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("deleting assistant: %w", err)
			}

			fmt.Printf("  %s Deleted %s\n",
				cliui.SuccessMark,
				cliui.IDStyle.Render(args[0]),
			)
			return nil
		},
	}
}

func newServicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services",
		Short: "List registered assistant services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			service := settings.Service()
			defer service.Close()

			list, err := service.AssistantServices(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("listing assistant services: %w", err)
			}

			if len(list.AssistantServiceInfos) == 0 {
				fmt.Printf("  %s\n", cliui.DimStyle.Render("No assistant services registered."))
				return nil
			}

			for _, info := range list.AssistantServiceInfos {
				fmt.Printf("  %s  %s\n",
					cliui.ValueStyle.Render(info.AssistantServiceID),
					cliui.DimStyle.Render(info.Name),
				)
			}
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var expires float64

	cmd := &cobra.Command{
		Use:   "register <url>",
		Short: "Refresh this service's registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			service := settings.Service()
			defer service.Close()

			update := workbench.UpdateAssistantServiceRegistrationURL{
				Name:                   settings.AssistantServiceID,
				URL:                    args[0],
				OnlineExpiresInSeconds: expires,
			}
			if err := service.UpdateRegistrationURL(cmd.Context(), settings.AssistantServiceID, update); err != nil {
				return fmt.Errorf("updating registration: %w", err)
			}

			fmt.Printf("  %s Registered %s at %s\n",
				cliui.SuccessMark,
				cliui.ValueStyle.Render(settings.AssistantServiceID),
				cliui.ValueStyle.Render(args[0]),
			)
			return nil
		},
	}

	cmd.Flags().Float64Var(&expires, "expires", 300, "Seconds until the registration goes offline")

	return cmd
}
