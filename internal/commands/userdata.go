package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/audit"
	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/output"
)

func init() {
	Register(&UserDataCmd{})
}

// UserDataCmd implements the userdata command.
type UserDataCmd struct {
	store storeFlags
}

func (c *UserDataCmd) Name() string      { return "userdata" }
func (c *UserDataCmd) Aliases() []string { return []string{"check-user"} }
func (c *UserDataCmd) Synopsis() string  { return "Show the documents one user owns" }
func (c *UserDataCmd) Usage() string {
	return "plannercheck userdata [common flags] [store flags] [<user>]"
}
func (c *UserDataCmd) NeedsSession() bool { return false }

func (c *UserDataCmd) RegisterFlags(fs *flag.FlagSet) {
	c.store.register(fs)
}

func (c *UserDataCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	c.store.apply(cfg)

	user := cfg.Settings.Email
	if len(args) == 1 {
		user = args[0]
	}
	user = strings.TrimSpace(user)
	if user == "" {
		fmt.Fprintf(errOut, "error: user required (pass <user> or set %s)\n", config.EnvEmail)
		return exitcode.UserError
	}

	s, code := openStore(ctx, cfg, be, errOut)
	if s == nil {
		return code
	}
	defer closeStore(cfg, s)

	report, err := audit.New(s, cfg).RunUserData(ctx, user)
	if err != nil {
		output.ConnectionFailure(errOut, err)
		return exitcode.BackendError
	}

	output.UserDataReport(out, report)
	return exitcode.Success
}
