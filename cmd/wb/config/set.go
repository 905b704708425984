package configcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andrehe001/semanticworkbench/pkg/cliui"
	"github.com/andrehe001/semanticworkbench/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .workbench/ directory. Keys use dotted notation matching
the TOML section structure.

For secret keys (identity.api_key, identity.user_token) the value may be
omitted: the command prompts for it with hidden input, or reads a single
line from stdin when piped.

Valid keys:
  service.base_url,
  identity.assistant_service_id, identity.api_key,
  identity.assistant_id, identity.user_token,
  mock.listen

Examples:
  wb config set service.base_url https://workbench.example.com
  wb config set identity.assistant_service_id echo-assistant.example
  wb config set identity.api_key
  echo $TOKEN | wb config set identity.user_token`

const setShortDesc string = "Set a configuration value"

// secretKeys are prompted for with hidden input when the value is omitted.
var secretKeys = map[string]bool{
	"identity.api_key":    true,
	"identity.user_token": true,
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> [value]",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			key := args[0]
			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				if !secretKeys[key] {
					return fmt.Errorf("value argument required for %q", key)
				}
				var err error
				value, err = readSecret(key)
				if err != nil {
					return err
				}
			}

			return runSet(key, value, configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Printf("\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}

	err = cfger.SetConfigValue(key, value)
	if err != nil {
		return err
	}

	shown := value
	if secretKeys[key] && shown != "" {
		shown = "********"
	}
	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(shown),
	)
	return nil
}

// readSecret reads a secret value from stdin. If stdin is a pipe, it reads
// the first line. Otherwise, it prompts interactively with hidden input.
func readSecret(key string) (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	fmt.Printf("Enter value for %s: ", key)

	valueBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading value: %w", err)
	}

	return string(valueBytes), nil
}
