package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/smoke"
)

func init() {
	Register(&SignInCmd{})
}

// SignInCmd implements the signin command.
type SignInCmd struct {
	api   apiFlags
	force bool
}

func (c *SignInCmd) Name() string      { return "signin" }
func (c *SignInCmd) Aliases() []string { return []string{"login"} }
func (c *SignInCmd) Synopsis() string  { return "Sign in and save the API session" }
func (c *SignInCmd) Usage() string {
	return "plannercheck signin [common flags] [api flags] [--force]"
}
func (c *SignInCmd) NeedsSession() bool { return false }

func (c *SignInCmd) RegisterFlags(fs *flag.FlagSet) {
	c.api.register(fs)
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *SignInCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if cfg.HasSession() && !c.force {
		if _, err := loadSession(cfg); err == nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already signed in")
			}
			return exitcode.Success
		}
	}

	c.api.apply(cfg)
	if err := cfg.Settings.RequireCredentials(); err != nil {
		fmt.Fprintf(errOut, "error: %v (set %s and %s)\n", err, config.EnvEmail, config.EnvPassword)
		return exitcode.UserError
	}

	steps, sess, err := smoke.New(be.API(cfg), cfg).Authenticate(ctx)
	if err != nil {
		for _, s := range steps {
			if !s.OK {
				fmt.Fprintf(errOut, "%s: %s\n", s.Name, s.Message)
			}
		}
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}

	if err := saveSession(cfg, sess); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
