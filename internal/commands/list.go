package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/api"
	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/output"
	"plannercheck/internal/resource"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	api apiFlags
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List records of one resource kind" }
func (c *ListCmd) Usage() string      { return "plannercheck list [common flags] [api flags] <kind>" }
func (c *ListCmd) NeedsSession() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.api.register(fs)
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: resource kind required")
		return exitcode.UserError
	}

	kind, err := resource.Lookup(name)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !kind.Listable {
		fmt.Fprintf(errOut, "error: %s records cannot be listed\n", kind.Name)
		return exitcode.UserError
	}

	sess, err := loadSession(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v (run: plannercheck signin --force)\n", err)
		return exitcode.AuthError
	}

	c.api.apply(cfg)
	recs, err := be.API(cfg).List(ctx, sess, kind)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintf(errOut, "error: auth error: %s (run: plannercheck signin --force)\n", api.Describe(err))
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", api.Describe(err))
		return exitcode.BackendError
	}

	if len(recs) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no records found")
		}
		return exitcode.Success
	}
	for i, rec := range recs {
		output.FormatRecord(out, i+1, rec)
	}
	return exitcode.Success
}
