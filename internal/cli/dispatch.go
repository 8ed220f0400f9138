// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"plannercheck/internal/commands"
	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/logging"
)

// LoggerFactory builds the process logger.
type LoggerFactory func(debug bool) (*zap.Logger, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	backends commands.Backends

	// NewLogger builds the logger handed to commands. Defaults to logging.New.
	NewLogger LoggerFactory

	// Getenv resolves environment settings. Defaults to the process
	// environment after loading .env.
	Getenv func(string) string
}

// NewDispatcher creates a new dispatcher with the given registry and backends.
func NewDispatcher(registry *commands.Registry, backends commands.Backends) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		backends:  backends,
		NewLogger: logging.New,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> usage
	if len(args) == 0 {
		return d.dispatch(ctx, "help", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves
	fs.SortFlags = false

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(out, "Usage:\n  %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	if d.NewLogger != nil {
		logger, err := d.NewLogger(debug)
		if err != nil {
			fmt.Fprintf(errOut, "error: logger: %s\n", err)
			return exitcode.UserError
		}
		defer func() { _ = logger.Sync() }()
		cfg.Logger = logger.With(zap.String("command", cmd.Name()))
	}

	if d.Getenv != nil {
		err = cfg.LoadFrom(d.Getenv)
	} else {
		err = cfg.Load()
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	if cmd.NeedsSession() && !cfg.HasSession() {
		fmt.Fprintf(errOut, "error: not signed in (run: %s signin)\n", config.AppName)
		return exitcode.AuthError
	}

	return cmd.Run(ctx, cfg, d.backends, fs.Args(), out, errOut)
}
