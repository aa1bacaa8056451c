// Package main provides the entry point for the keyfob CLI.
package main

import (
	"context"
	"os"

	"github.com/keyfob-dev/keyfob/internal/cli"
	_ "github.com/keyfob-dev/keyfob/internal/device/soft" // register the soft signer backend
	"github.com/keyfob-dev/keyfob/internal/signal"
)

// Build information set via ldflags.
var (
	version = "" //nolint:gochecknoglobals // Set at build time
	commit  = "" //nolint:gochecknoglobals // Set at build time
	date    = "" //nolint:gochecknoglobals // Set at build time
)

func main() {
	// Ctrl+C during a device wait cancels the operation instead of killing
	// the process mid-session.
	h := signal.NewHandler(context.Background())

	err := cli.Execute(h.Context(), cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	h.Stop()
	cli.CloseLogFile()
	os.Exit(cli.ExitCodeForError(err))
}
