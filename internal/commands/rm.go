package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "gtodo rm <ref>" }
func (c *RmCmd) NeedsStore() bool  { return true }
func (c *RmCmd) NeedsLogin() bool  { return true }
func (c *RmCmd) AutoSync() bool    { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code, found := resolveTaskArgs(svc, args, errOut)
	if !found {
		return code
	}
	if err := svc.DeleteTask(task.ID); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
