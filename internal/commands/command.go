// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command reads or changes state.
	// Commands like help, version, hashpw and config return false.
	NeedsStore() bool

	// NeedsLogin returns true if the command works on the current
	// owner's tasks. Implies NeedsStore.
	NeedsLogin() bool

	// AutoSync returns true if the dispatcher should run the startup
	// pull and enable debounced pushes before Run. Commands that drive
	// sync themselves return false.
	AutoSync() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, settings).
	// svc is nil if NeedsStore() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}
