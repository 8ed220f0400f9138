package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/output"
	"plannercheck/internal/smoke"
)

func init() {
	Register(&SmokeCmd{})
}

// SmokeCmd implements the smoke command.
type SmokeCmd struct {
	api    apiFlags
	strict bool
}

func (c *SmokeCmd) Name() string      { return "smoke" }
func (c *SmokeCmd) Aliases() []string { return []string{"test-api"} }
func (c *SmokeCmd) Synopsis() string  { return "Exercise the planner API end to end" }
func (c *SmokeCmd) Usage() string {
	return "plannercheck smoke [common flags] [api flags] [--strict]"
}
func (c *SmokeCmd) NeedsSession() bool { return false }

func (c *SmokeCmd) RegisterFlags(fs *flag.FlagSet) {
	c.api.register(fs)
	fs.BoolVar(&c.strict, "strict", false, "")
}

func (c *SmokeCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	c.api.apply(cfg)
	if err := cfg.Settings.RequireCredentials(); err != nil {
		fmt.Fprintf(errOut, "error: %v (set %s and %s)\n", err, config.EnvEmail, config.EnvPassword)
		return exitcode.UserError
	}

	report := smoke.New(be.API(cfg), cfg).Run(ctx)
	output.SmokeReport(out, report, cfg.Settings.Cluster, cfg.Settings.Database)

	if c.strict {
		switch {
		case !report.Authenticated:
			return exitcode.AuthError
		case report.ResourceFailures() > 0:
			return exitcode.BackendError
		}
	}
	return exitcode.Success
}
