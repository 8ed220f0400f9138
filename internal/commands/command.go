// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/api"
	"plannercheck/internal/config"
	"plannercheck/internal/store"
)

// StoreFactory opens the document store described by cfg.
type StoreFactory func(ctx context.Context, cfg *config.Config) (store.Store, error)

// APIFactory creates a planner API client from cfg.
type APIFactory func(cfg *config.Config) api.Client

// Backends creates the external clients commands talk to. Commands build
// them after applying their flag overrides to cfg.
type Backends struct {
	Store StoreFactory
	API   APIFactory
}

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

	// NeedsSession returns true if the command requires a saved API session.
	NeedsSession() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg carries the resolved settings and logger.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int
}
