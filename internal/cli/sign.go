package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyfob-dev/keyfob/internal/config"
	"github.com/keyfob-dev/keyfob/internal/errors"
	"github.com/keyfob-dev/keyfob/internal/session"
)

// SignFlags holds flags specific to the sign command.
type SignFlags struct {
	// Index selects among multiple credentials for the same host.
	Index uint32

	// Address is the expected Bitcoin-style address of the identity's key.
	// Empty means display-only: the device shows the derived address for
	// out-of-band confirmation and nothing is signed.
	Address string

	// SSHChallengeFile points at a raw SSH challenge blob to sign instead of
	// running the generic identity flow.
	SSHChallengeFile string
}

// newSignCmd creates the 'sign' command.
func newSignCmd(global *GlobalFlags, flags *SignFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <identity>",
		Short: "Run the identity signing flow against the device",
		Long: `Sign a challenge for an identity and verify the result end to end.

Without --address the device displays the identity's derived address for
out-of-band confirmation and performs no signature (exit code 2). With
--address the device signs a fresh random challenge; the result is verified
against the expected address, the returned key, and the signed digest.

With --ssh-challenge the raw SSH challenge blob in the given file is signed
instead (identity protocol must be ssh) and the r/s pair is printed.

Exit codes: 0 signature valid, 1 invalid or error, 2 confirmation displayed.

Examples:
  keyfob sign https://accounts.example.com
  keyfob sign https://accounts.example.com --address 1BvBMSEYst...
  keyfob sign ssh://git@github.com --ssh-challenge /tmp/challenge.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd.Context(), cmd.OutOrStdout(), global, flags, args[0], cmd.Flags().Changed("index"))
		},
		SilenceUsage: true,
	}

	cmd.Flags().Uint32Var(&flags.Index, "index", 0, "credential index for the identity")
	cmd.Flags().StringVar(&flags.Address, "address", "", "expected address of the identity's key")
	cmd.Flags().StringVar(&flags.SSHChallengeFile, "ssh-challenge", "", "file containing a raw SSH challenge blob")
	cmd.MarkFlagsMutuallyExclusive("address", "ssh-challenge")
	return cmd
}

// AddSignCommand adds the sign command to the root command.
func AddSignCommand(root *cobra.Command, global *GlobalFlags) {
	root.AddCommand(newSignCmd(global, &SignFlags{}))
}

// runSign executes the sign command.
func runSign(ctx context.Context, w io.Writer, global *GlobalFlags, flags *SignFlags, identityArg string, indexSet bool) error {
	sess, cfg, err := openSession(ctx, global)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if flags.SSHChallengeFile != "" {
		return runSignSSH(ctx, w, global, cfg, sess, flags, identityArg, indexSet)
	}

	id, err := resolveIdentity(cfg, identityArg, indexSet, flags.Index)
	if err != nil {
		return err
	}

	ctx, cancel := opContext(ctx, cfg)
	defer cancel()

	outcome, err := sess.SignIdentity(ctx, id.String(), id.Index, flags.Address)
	if err != nil {
		return err
	}

	if err = writeOutcome(w, global, id.String(), outcome); err != nil {
		return err
	}

	switch outcome {
	case session.OutcomeValid:
		return nil
	case session.OutcomeConfirmationDisplayed:
		return errors.NewExitCodeError(outcome.ExitCode(), errors.ErrConfirmationDisplayed)
	default:
		return errors.NewExitCodeError(outcome.ExitCode(), errors.ErrSignatureInvalid)
	}
}

// runSignSSH signs a raw SSH challenge blob read from a file.
func runSignSSH(ctx context.Context, w io.Writer, global *GlobalFlags, cfg *config.Config, sess *session.Session, flags *SignFlags, identityArg string, indexSet bool) error {
	id, err := resolveIdentity(cfg, identityArg, indexSet, flags.Index)
	if err != nil {
		return err
	}

	blob, err := os.ReadFile(flags.SSHChallengeFile) //nolint:gosec // Path comes from the user's own flag
	if err != nil {
		return errors.Wrapf(err, "reading challenge file %s", flags.SSHChallengeFile)
	}

	ctx, cancel := opContext(ctx, cfg)
	defer cancel()

	sig, err := sess.SignSSHChallenge(ctx, id, blob)
	if err != nil {
		return err
	}

	if global.Output == OutputJSON {
		return json.NewEncoder(w).Encode(map[string]any{
			"identity": id.String(),
			"r":        fmt.Sprintf("%064x", sig.R),
			"s":        fmt.Sprintf("%064x", sig.S),
		})
	}
	_, err = fmt.Fprintf(w, "r: %064x\ns: %064x\n", sig.R, sig.S)
	return err
}

// writeOutcome renders the generic flow's outcome.
func writeOutcome(w io.Writer, global *GlobalFlags, identityStr string, outcome session.Outcome) error {
	if global.Output == OutputJSON {
		return json.NewEncoder(w).Encode(map[string]any{
			"identity":  identityStr,
			"outcome":   outcome.String(),
			"exit_code": outcome.ExitCode(),
		})
	}
	_, err := fmt.Fprintf(w, "%s\n", outcome)
	return err
}
