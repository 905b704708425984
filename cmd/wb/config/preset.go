package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/config"
)

const presetLongDesc string = `Apply a named configuration preset.

Overwrites config.toml in the .workbench/ directory with the values for
the given environment preset. Identity secrets (API key, user token) are
not part of any preset and are cleared; set them again afterwards with
"wb config set".

Available presets:
  local   service at http://localhost:3000
  docker  service at http://host.docker.internal:3000`

const presetShortDesc string = "Apply a named configuration preset"

func newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset <name>",
		Short: presetShortDesc,
		Long:  presetLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runPreset(args[0], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runPreset(name, configDir string) error {
	cfg, err := config.PresetConfig(name)
	if err != nil {
		return fmt.Errorf("%w\n\nValid presets: %s", err, strings.Join(config.ValidPresetNames(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  %s Applied preset %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(strings.ToLower(name)),
	)
	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Config file:"),
		cliui.DimStyle.Render(cfger.GetTarget()),
	)

	return nil
}
