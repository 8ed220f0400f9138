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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "plannercheck help" }
func (c *HelpCmd) NeedsSession() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  plannercheck audit [common flags] [store flags] [--lookup <email>,...]
  plannercheck userdata [common flags] [store flags] [<user>]
  plannercheck smoke [common flags] [api flags] [--strict]
  plannercheck signin [common flags] [api flags] [--force]
  plannercheck signout [common flags]
  plannercheck list [common flags] [api flags] <kind>
  plannercheck kinds [common flags]
  plannercheck help
  plannercheck version

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Store flags:
  --uri <uri>                  MongoDB connection string (MONGODB_URI)
  --database <name>            Database name (MONGODB_DATABASE)
  --cluster <name>             Cluster display name (PLANNER_CLUSTER)
  --connect-timeout <dur>      Server selection timeout (PLANNER_CONNECT_TIMEOUT)

API flags:
  --api-url <url>      API base URL (PLANNER_API_URL)
  --email <email>      Account email (PLANNER_EMAIL)
  --password <pw>      Account password (PLANNER_PASSWORD)
  --name <name>        Account display name (PLANNER_NAME)
  --timeout <dur>      Per-request timeout (PLANNER_REQUEST_TIMEOUT)
`
