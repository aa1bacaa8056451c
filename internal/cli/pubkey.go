package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// PubkeyFlags holds flags specific to the pubkey command.
type PubkeyFlags struct {
	// Index selects among multiple credentials for the same host.
	Index uint32
}

// newPubkeyCmd creates the 'pubkey' command for exporting SSH public keys.
func newPubkeyCmd(global *GlobalFlags, flags *PubkeyFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubkey <identity>",
		Short: "Export an identity's SSH public key",
		Long: `Export the SSH public key for an identity in authorized_keys format.

The identity string follows [proto://][user@]host[:port][/path]. Bare strings
get the configured default protocol (ssh unless changed). The key is derived
deterministically on the device, so the same identity and index always export
the same key.

Examples:
  keyfob pubkey ssh://git@github.com
  keyfob pubkey example.com --index 1 >> ~/.ssh/authorized_keys`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPubkey(cmd.Context(), cmd.OutOrStdout(), global, flags, args[0], cmd.Flags().Changed("index"))
		},
		SilenceUsage: true,
	}

	cmd.Flags().Uint32Var(&flags.Index, "index", 0, "credential index for the identity")
	return cmd
}

// AddPubkeyCommand adds the pubkey command to the root command.
func AddPubkeyCommand(root *cobra.Command, global *GlobalFlags) {
	root.AddCommand(newPubkeyCmd(global, &PubkeyFlags{}))
}

// runPubkey executes the pubkey command.
func runPubkey(ctx context.Context, w io.Writer, global *GlobalFlags, flags *PubkeyFlags, identityArg string, indexSet bool) error {
	sess, cfg, err := openSession(ctx, global)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	id, err := resolveIdentity(cfg, identityArg, indexSet, flags.Index)
	if err != nil {
		return err
	}

	ctx, cancel := opContext(ctx, cfg)
	defer cancel()

	line, err := sess.PublicKey(ctx, id)
	if err != nil {
		return err
	}

	if global.Output == OutputJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(map[string]any{
			"identity":   id.String(),
			"index":      id.Index,
			"public_key": strings.TrimSuffix(line, "\n"),
		})
	}

	_, err = fmt.Fprint(w, line)
	return err
}
