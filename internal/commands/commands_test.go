package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"plannercheck/internal/api"
	"plannercheck/internal/backend/plannerapi"
	"plannercheck/internal/commands"
	"plannercheck/internal/config"
	"plannercheck/internal/exitcode"
	"plannercheck/internal/store"
	"plannercheck/internal/testutil"
)

// newConfig returns a config rooted in a temp dir with default settings.
func newConfig(t *testing.T, quiet bool) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	cfg.Quiet = quiet
	return cfg
}

// backends wires the fake store and a real API client.
func backends(fs *testutil.FakeStore) commands.Backends {
	return commands.Backends{
		Store: func(ctx context.Context, cfg *config.Config) (store.Store, error) {
			return fs, nil
		},
		API: func(cfg *config.Config) api.Client {
			return plannerapi.New(cfg)
		},
	}
}

// runCommand is a helper to run a command against the given config and backends.
func runCommand(t *testing.T, cmd commands.Command, cfg *config.Config, be commands.Backends, args []string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	code = cmd.Run(context.Background(), cfg, be, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

// signedIn signs the account in against fake and saves the session in cfg.
func signedIn(t *testing.T, cfg *config.Config, fake *testutil.FakeAPI) {
	t.Helper()
	fake.AddAccount("tester@example.com", "pw")
	cfg.Settings.APIURL = fake.BaseURL()
	sess, err := plannerapi.New(cfg).SignIn(context.Background(), api.Credentials{Email: "tester@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	data, _ := json.Marshal(sess)
	if err := cfg.WriteSession(data); err != nil {
		t.Fatalf("WriteSession: %v", err)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, newConfig(t, false), commands.Backends{}, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "plannercheck 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, newConfig(t, false), commands.Backends{}, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("help output should contain 'Usage:'")
	}
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, cmd.Usage()) {
			t.Errorf("help output missing usage for %s: %q", cmd.Name(), cmd.Usage())
		}
	}
}

func TestRegistry_Aliases(t *testing.T) {
	tests := map[string]string{
		"login":      "signin",
		"logout":     "signout",
		"check-db":   "audit",
		"check-user": "userdata",
		"test-api":   "smoke",
		"ls":         "list",
	}
	for alias, name := range tests {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok {
			t.Errorf("alias %q not registered", alias)
			continue
		}
		if cmd.Name() != name {
			t.Errorf("alias %q: expected %q, got %q", alias, name, cmd.Name())
		}
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.KindsCmd{}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(&commands.KindsCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

// Tests for kinds command
func TestKindsCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.KindsCmd{}, newConfig(t, false), commands.Backends{}, nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 kinds, got %d: %q", len(lines), stdout)
	}
	if !strings.HasPrefix(lines[4], "health") {
		t.Errorf("expected health fifth, got %q", lines[4])
	}
}

// Tests for list command
func TestListCommand_Records(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.Seed("/todos", map[string]any{"_id": "t1", "title": "Meditate"})
	fake.Seed("/todos", map[string]any{"_id": "t2"})
	cfg := newConfig(t, false)
	signedIn(t, cfg, fake)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, cfg, backends(nil), []string{"todo"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	expected := "   1  Meditate\n   2  t2\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	cfg := newConfig(t, false)
	signedIn(t, cfg, fake)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, cfg, backends(nil), []string{"milestones"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "no records found\n" {
		t.Errorf("expected %q, got %q", "no records found\n", stdout)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	cfg := newConfig(t, true)
	signedIn(t, cfg, fake)

	stdout, _, _ := runCommand(t, &commands.ListCmd{}, cfg, backends(nil), []string{"milestones"})

	// Quiet mode should suppress "no records found"
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_UnknownKind(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, newConfig(t, false), backends(nil), []string{"recipes"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: unknown resource kind: recipes\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestListCommand_MissingKind(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.ListCmd{}, newConfig(t, false), backends(nil), nil)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: resource kind required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_RevokedSession(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	cfg := newConfig(t, false)
	cfg.Settings.APIURL = fake.BaseURL()
	if err := cfg.WriteSession([]byte(`{"token":"stale","email":"tester@example.com"}`)); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCommand(t, &commands.ListCmd{}, cfg, backends(nil), []string{"goals"})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "HTTP 401") || !strings.Contains(stderr, "signin --force") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestListCommand_BackendError(t *testing.T) {
	fake := testutil.NewFakeAPI()
	defer fake.Close()
	fake.Status["GET /goals"] = 500
	cfg := newConfig(t, false)
	signedIn(t, cfg, fake)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, cfg, backends(nil), []string{"goals"})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: HTTP 500: {\"error\":\"injected failure\"}\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

// Tests for audit command
func TestAuditCommand_UnexpectedArgument(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AuditCmd{}, newConfig(t, false), backends(testutil.NewFakeStore()), []string{"extra"})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unexpected argument: extra\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAuditCommand_NoStoreConfigured(t *testing.T) {
	_, stderr, code := runCommand(t, &commands.AuditCmd{}, newConfig(t, false), commands.Backends{}, nil)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr == "" {
		t.Error("expected an error message")
	}
}

func TestUserDataCommand_ExplicitUser(t *testing.T) {
	fs := testutil.NewFakeStore()
	fs.AddCollection("reminders", store.Document{"_id": "r1", "userId": "other@x.com"})
	cfg := newConfig(t, false)
	cfg.Settings.Email = "me@x.com"

	stdout, _, code := runCommand(t, &commands.UserDataCmd{}, cfg, backends(fs), []string{"other@x.com"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, "DATA FOR USER: other@x.com") || !strings.Contains(stdout, "1. ID: r1") {
		t.Errorf("unexpected report %q", stdout)
	}
}
