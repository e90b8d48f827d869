package commands

import (
	"errors"
	"fmt"
	"io"

	"gtodo/internal/backend/gist"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

// NotLoggedInMessage is printed when a command needs an owner.
const NotLoggedInMessage = "error: not logged in (run: gtodo login)"

// reportError prints err and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		fmt.Fprintln(errOut, NotLoggedInMessage)
		return exitcode.AuthError
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, gist.ErrNotConfigured):
		fmt.Fprintln(errOut, "error: sync not configured (run: gtodo settings --token <token> --gist-id <id>)")
		return exitcode.AuthError
	case errors.Is(err, gist.ErrUnauthenticated):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrSyncInProgress),
		errors.Is(err, service.ErrListNotEmpty),
		errors.Is(err, service.ErrInvalidPriority):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// ok prints the success marker unless quiet.
func ok(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
