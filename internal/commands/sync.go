package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
)

func init() {
	Register(&SyncCmd{})
	Register(&PullCmd{})
	Register(&MigrateCmd{})
	Register(&StatusCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct{}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return []string{"push"} }
func (c *SyncCmd) Synopsis() string  { return "Push the whole state to the gist now" }
func (c *SyncCmd) Usage() string     { return "gtodo sync" }
func (c *SyncCmd) NeedsStore() bool  { return true }
func (c *SyncCmd) NeedsLogin() bool  { return false }
func (c *SyncCmd) AutoSync() bool    { return false }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := svc.SyncToGist(ctx); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// PullCmd implements the pull command.
type PullCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *PullCmd) SetForce(force bool) {
	c.force = force
}

func (c *PullCmd) Name() string      { return "pull" }
func (c *PullCmd) Aliases() []string { return nil }
func (c *PullCmd) Synopsis() string  { return "Replace local lists and tasks with the gist copy" }
func (c *PullCmd) Usage() string     { return "gtodo pull [--force]" }
func (c *PullCmd) NeedsStore() bool  { return true }
func (c *PullCmd) NeedsLogin() bool  { return false }
func (c *PullCmd) AutoSync() bool    { return false }

func (c *PullCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *PullCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := svc.PullFromGist(ctx, c.force); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// MigrateCmd implements the migrate command.
type MigrateCmd struct {
	owner string
}

func (c *MigrateCmd) Name() string      { return "migrate" }
func (c *MigrateCmd) Aliases() []string { return nil }
func (c *MigrateCmd) Synopsis() string  { return "Assign an owner to ownerless tasks and push" }
func (c *MigrateCmd) Usage() string     { return "gtodo migrate [--owner <user>]" }
func (c *MigrateCmd) NeedsStore() bool  { return true }
func (c *MigrateCmd) NeedsLogin() bool  { return false }
func (c *MigrateCmd) AutoSync() bool    { return false }

func (c *MigrateCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.owner, "owner", "", "")
}

func (c *MigrateCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	owner := c.owner
	if owner == "" {
		owner = cfg.Maintenance.DefaultOwner
	}
	if owner == "" {
		fmt.Fprintln(errOut, "error: owner required")
		return exitcode.UserError
	}

	n, err := svc.RunMaintenanceMigration(ctx, owner)
	if err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %d assigned to %s\n", n, owner)
	}
	return exitcode.Success
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return nil }
func (c *StatusCmd) Synopsis() string  { return "Print the current owner and sync status" }
func (c *StatusCmd) Usage() string     { return "gtodo status" }
func (c *StatusCmd) NeedsStore() bool  { return true }
func (c *StatusCmd) NeedsLogin() bool  { return false }
func (c *StatusCmd) AutoSync() bool    { return true }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	user := svc.CurrentUser()
	if user == "" {
		user = "(not logged in)"
	}
	fmt.Fprintf(out, "user:    %s\n", user)
	output.FormatSettings(out, svc.Settings())
	output.FormatSyncStatus(out, svc.SyncStatus())
	return exitcode.Success
}
