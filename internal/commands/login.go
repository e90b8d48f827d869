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
	Register(&LoginCmd{})
	Register(&WhoamiCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct{}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in as a task owner" }
func (c *LoginCmd) Usage() string     { return "gtodo login [common flags] <user> <password>" }
func (c *LoginCmd) NeedsStore() bool  { return true }
func (c *LoginCmd) NeedsLogin() bool  { return false }
func (c *LoginCmd) AutoSync() bool    { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: user and password required")
		return exitcode.UserError
	}
	if len(cfg.Users) == 0 {
		fmt.Fprintf(errOut, "error: no users configured in %s (see: gtodo hashpw)\n", cfg.FilePath())
		return exitcode.AuthError
	}

	if err := svc.Login(args[0], args[1]); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the current owner" }
func (c *WhoamiCmd) Usage() string     { return "gtodo whoami" }
func (c *WhoamiCmd) NeedsStore() bool  { return true }
func (c *WhoamiCmd) NeedsLogin() bool  { return true }
func (c *WhoamiCmd) AutoSync() bool    { return false }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, svc.CurrentUser())
	return exitcode.Success
}
