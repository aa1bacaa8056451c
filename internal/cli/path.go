package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/keyfob-dev/keyfob/internal/config"
	"github.com/keyfob-dev/keyfob/internal/identity"
)

// PathFlags holds flags specific to the path command.
type PathFlags struct {
	// Index selects among multiple credentials for the same host.
	Index uint32
}

// newPathCmd creates the 'path' command. It is a pure computation: no device
// session is opened.
func newPathCmd(global *GlobalFlags, flags *PathFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path <identity>",
		Short: "Print the derivation path for an identity",
		Long: `Print the hardened BIP32-style derivation path an identity maps to.

The path is a pure function of the identity string and index: SHA-256 over
the little-endian index and the identity string selects four hardened path
elements under the fixed application namespace.

Examples:
  keyfob path ssh://git@github.com
  keyfob path example.com --index 3 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(cmd.Context(), cmd.OutOrStdout(), global, flags, args[0], cmd.Flags().Changed("index"))
		},
		SilenceUsage: true,
	}

	cmd.Flags().Uint32Var(&flags.Index, "index", 0, "credential index for the identity")
	return cmd
}

// AddPathCommand adds the path command to the root command.
func AddPathCommand(root *cobra.Command, global *GlobalFlags) {
	root.AddCommand(newPathCmd(global, &PathFlags{}))
}

// runPath executes the path command.
func runPath(ctx context.Context, w io.Writer, global *GlobalFlags, flags *PathFlags, identityArg string, indexSet bool) error {
	cfg, err := config.Load(GetLogger().WithContext(ctx))
	if err != nil {
		return err
	}

	id, err := resolveIdentity(cfg, identityArg, indexSet, flags.Index)
	if err != nil {
		return err
	}

	path := identity.DerivePath(id)

	if global.Output == OutputJSON {
		return json.NewEncoder(w).Encode(map[string]any{
			"identity": id.String(),
			"index":    id.Index,
			"path":     identity.FormatPath(path),
			"elements": path,
		})
	}

	_, err = fmt.Fprintf(w, "%s\n", identity.FormatPath(path))
	return err
}
