package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
)

func init() {
	Register(&SignOutCmd{})
}

// SignOutCmd implements the signout command.
type SignOutCmd struct{}

func (c *SignOutCmd) Name() string       { return "signout" }
func (c *SignOutCmd) Aliases() []string  { return []string{"logout"} }
func (c *SignOutCmd) Synopsis() string   { return "Remove the saved API session" }
func (c *SignOutCmd) Usage() string      { return "plannercheck signout [common flags]" }
func (c *SignOutCmd) NeedsSession() bool { return false }

func (c *SignOutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SignOutCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	if !cfg.HasSession() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not signed in")
		}
		return exitcode.Success
	}

	if err := cfg.RemoveSession(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
