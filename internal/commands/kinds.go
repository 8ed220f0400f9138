package commands

import (
	"context"
	"io"

	flag "github.com/spf13/pflag"

	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/output"
	"plannercheck/internal/resource"
)

func init() {
	Register(&KindsCmd{})
}

// KindsCmd implements the kinds command.
type KindsCmd struct{}

func (c *KindsCmd) Name() string       { return "kinds" }
func (c *KindsCmd) Aliases() []string  { return nil }
func (c *KindsCmd) Synopsis() string   { return "Show resource kinds and endpoints" }
func (c *KindsCmd) Usage() string      { return "plannercheck kinds [common flags]" }
func (c *KindsCmd) NeedsSession() bool { return false }

func (c *KindsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *KindsCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	for _, k := range resource.All() {
		output.FormatKind(out, k)
	}
	return exitcode.Success
}
