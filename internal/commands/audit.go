package commands

import (
	"context"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"plannercheck/internal/audit"
	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/output"
	"plannercheck/internal/store"
)

func init() {
	Register(&AuditCmd{})
}

// AuditCmd implements the audit command.
type AuditCmd struct {
	store  storeFlags
	lookup []string
}

func (c *AuditCmd) Name() string      { return "audit" }
func (c *AuditCmd) Aliases() []string { return []string{"check-db"} }
func (c *AuditCmd) Synopsis() string  { return "Audit the document store" }
func (c *AuditCmd) Usage() string {
	return "plannercheck audit [common flags] [store flags] [--lookup <email>,...]"
}
func (c *AuditCmd) NeedsSession() bool { return false }

func (c *AuditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.store.register(fs)
	fs.StringSliceVar(&c.lookup, "lookup", nil, "")
}

func (c *AuditCmd) Run(ctx context.Context, cfg *config.Config, be Backends, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	c.store.apply(cfg)
	if len(c.lookup) > 0 {
		cfg.Settings.LookupEmails = c.lookup
	}

	s, code := openStore(ctx, cfg, be, errOut)
	if s == nil {
		return code
	}
	defer closeStore(cfg, s)

	report, err := audit.New(s, cfg).Run(ctx)
	if err != nil {
		output.ConnectionFailure(errOut, err)
		return exitcode.BackendError
	}

	output.AuditReport(out, report)
	return exitcode.Success
}

// openStore creates the store client. On failure it prints the connection
// guidance and returns a nil store with the exit code.
func openStore(ctx context.Context, cfg *config.Config, be Backends, errOut io.Writer) (store.Store, int) {
	if be.Store == nil {
		fmt.Fprintln(errOut, "error: no document store configured")
		return nil, exitcode.BackendError
	}
	s, err := be.Store(ctx, cfg)
	if err != nil {
		output.ConnectionFailure(errOut, fmt.Errorf("%w: %w", audit.ErrConnection, err))
		return nil, exitcode.BackendError
	}
	return s, exitcode.Success
}

func closeStore(cfg *config.Config, s store.Store) {
	if err := s.Close(context.Background()); err != nil {
		cfg.Logger.Warn("closing store", zap.Error(err))
	}
}
