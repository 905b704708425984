// Package configcmder provides the config command for managing persistent
// wb configuration stored in the .workbench/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent wb configuration.

Configuration is stored as config.toml in the .workbench/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values, and WORKBENCH_* environment variables take
precedence over the file.

Keys use dotted notation matching the TOML section structure:
  service.base_url,
  identity.assistant_service_id, identity.api_key,
  identity.assistant_id, identity.user_token,
  mock.listen

Use subcommands to get, set, or list configuration values:
  wb config set <key> [value]    Set a configuration value
  wb config get <key>            Get a configuration value
  wb config list                 List all configuration values
  wb config preset <name>        Write a preset configuration

Examples:
  wb config set service.base_url https://workbench.example.com
  wb config set identity.api_key            (prompts with hidden input)
  wb config get service.base_url
  wb config list`

const configShortDesc string = "Manage persistent wb configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPresetCmd())

	return cmd
}
