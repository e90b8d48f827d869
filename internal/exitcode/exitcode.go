// Package exitcode defines exit codes for the CLI.
package exitcode

// Process exit codes.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task or list).
	UserError = 1

	// AuthError indicates a login, credential or configuration error.
	AuthError = 2

	// BackendError indicates a remote, network or storage error.
	BackendError = 3
)
