package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keyfob-dev/keyfob/internal/config"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// newConfigCmd creates the 'config' parent command.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect keyfob configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// AddConfigCommand adds the config command tree to the root command.
func AddConfigCommand(root *cobra.Command) {
	root.AddCommand(newConfigCmd())
}

// ConfigShowFlags holds flags specific to the config show command.
type ConfigShowFlags struct {
	// OutputFormat specifies the output format (yaml or json).
	OutputFormat string
}

// newConfigShowCmd creates the 'config show' subcommand.
func newConfigShowCmd() *cobra.Command {
	flags := &ConfigShowFlags{}
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display the effective keyfob configuration.

Values are merged from built-in defaults, ~/.keyfob/config.yaml, and KEYFOB_*
environment variables, in ascending precedence. The config carries no secrets
(the master key lives in its own file), so nothing is masked.

Examples:
  keyfob config show
  keyfob config show --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.OutOrStdout(), flags)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", "yaml", "output format (yaml or json)")
	return cmd
}

// runConfigShow executes the config show command.
func runConfigShow(ctx context.Context, w io.Writer, flags *ConfigShowFlags) error {
	cfg, err := config.Load(GetLogger().WithContext(ctx))
	if err != nil {
		return err
	}

	switch flags.OutputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err = enc.Encode(cfg); err != nil {
			return err
		}
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		if _, err = w.Write(data); err != nil {
			return err
		}
	default:
		return errors.Wrapf(errors.ErrInvalidOutputFormat, "%s (use yaml or json)", flags.OutputFormat)
	}

	return writeConfigLocations(w)
}

// writeConfigLocations appends the config and log file locations.
func writeConfigLocations(w io.Writer) error {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return nil //nolint:nilerr // Locations are informational only
	}

	status := "not found"
	if _, statErr := os.Stat(path); statErr == nil {
		status = "loaded"
	}
	if _, err = fmt.Fprintf(w, "\n# config file: %s (%s)\n", path, status); err != nil {
		return err
	}

	if logPath, logErr := LogFilePath(); logErr == nil {
		_, err = fmt.Fprintf(w, "# log file: %s\n", logPath)
	}
	return err
}
