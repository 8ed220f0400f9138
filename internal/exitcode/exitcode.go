// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion, including runs whose
	// individual smoke steps failed (unless --strict is set).
	Success = 0

	// UserError indicates a user error (bad args, unknown kind, missing settings).
	UserError = 1

	// AuthError indicates the planner API rejected the account or no
	// session is available.
	AuthError = 2

	// BackendError indicates the store or API could not be reached, or a
	// step failed under --strict.
	BackendError = 3
)
