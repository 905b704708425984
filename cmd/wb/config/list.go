package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/pkg/config"
)

const listLongDesc string = `List all configuration keys and their current values.

Values come from config.toml in the .workbench/ directory, with
defaults filled in for any key the file does not set. Secret values
are masked.`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runList(configDir)
		},
	}

	return cmd
}

func runList(configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	keys := config.ValidConfigKeys()

	width := 0
	for _, key := range keys {
		if len(key) > width {
			width = len(key)
		}
	}

	for _, key := range keys {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		if secretKeys[key] && value != "" {
			value = "********"
		}
		fmt.Printf("%-*s = %q\n", width, key, value)
	}

	return nil
}
