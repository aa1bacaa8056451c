// Package cli provides the command-line interface for keyfob.
package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keyfob-dev/keyfob/internal/constants"
	"github.com/keyfob-dev/keyfob/internal/errors"
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates successful execution (or a valid signature).
	ExitSuccess = 0
	// ExitError indicates a general error or a failed signature verification.
	ExitError = 1
	// ExitConfirmation indicates an address was displayed for out-of-band
	// confirmation and no signature was performed.
	ExitConfirmation = 2
)

// Output format constants.
const (
	// OutputText is the default human-readable output format.
	OutputText = "text"
	// OutputJSON is the machine-readable JSON output format.
	OutputJSON = "json"
)

// GlobalFlags holds flags available to all commands.
type GlobalFlags struct {
	// Output specifies the output format (text or json).
	Output string
	// Verbose enables debug-level logging.
	Verbose bool
	// Quiet suppresses non-essential output (warn level only).
	Quiet bool
	// Backend overrides the configured signer backend.
	Backend string
}

// AddGlobalFlags adds global flags to a command.
// These flags are available to all subcommands via PersistentFlags.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.PersistentFlags().StringVar(&flags.Backend, "backend", "", "signer backend (overrides config)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags binds global flags to Viper for configuration file and
// environment variable support. The KEYFOB_ prefix is used for environment
// variables (e.g., KEYFOB_OUTPUT, KEYFOB_VERBOSE).
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// Use Root().PersistentFlags() to find flags defined on the root command,
	// even when called from a subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()

	for _, name := range []string{"output", "verbose", "quiet", "backend"} {
		if err := v.BindPFlag(name, rootFlags.Lookup(name)); err != nil {
			return err
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	return nil
}

// ValidOutputFormats returns the list of valid output format values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat checks if the given format is a valid output format.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// ExitCodeForError returns the exit code for the given error. Nil is
// ExitSuccess; an ExitCodeError carries its own code (the sign command uses
// this for the outcome mapping); everything else is ExitError. Exit code 2 is
// reserved for the confirmation-displayed outcome, so ordinary input errors
// never map to it.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *errors.ExitCodeError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitError
}
