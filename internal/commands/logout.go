package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Forget the current owner" }
func (c *LogoutCmd) Usage() string     { return "gtodo logout [common flags]" }
func (c *LogoutCmd) NeedsStore() bool  { return true }
func (c *LogoutCmd) NeedsLogin() bool  { return false }
func (c *LogoutCmd) AutoSync() bool    { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if svc.CurrentUser() == "" {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	if err := svc.Logout(); err != nil {
		fmt.Fprintf(errOut, "error: failed to log out: %v\n", err)
		return exitcode.BackendError
	}
	return ok(out, cfg.Quiet)
}
