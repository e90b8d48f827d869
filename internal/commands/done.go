package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "gtodo done <ref>" }
func (c *DoneCmd) NeedsStore() bool  { return true }
func (c *DoneCmd) NeedsLogin() bool  { return true }
func (c *DoneCmd) AutoSync() bool    { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return setCompleted(cfg, svc, args, true, out, errOut)
}

// UndoneCmd implements the undone command.
type UndoneCmd struct{}

func (c *UndoneCmd) Name() string      { return "undone" }
func (c *UndoneCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoneCmd) Synopsis() string  { return "Mark a task open again" }
func (c *UndoneCmd) Usage() string     { return "gtodo undone <ref>" }
func (c *UndoneCmd) NeedsStore() bool  { return true }
func (c *UndoneCmd) NeedsLogin() bool  { return true }
func (c *UndoneCmd) AutoSync() bool    { return true }

func (c *UndoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return setCompleted(cfg, svc, args, false, out, errOut)
}

// setCompleted is the shared implementation for done and undone.
func setCompleted(cfg *config.Config, svc service.Service, args []string, completed bool, out, errOut io.Writer) int {
	task, code, found := resolveTaskArgs(svc, args, errOut)
	if !found {
		return code
	}
	if err := svc.UpdateTask(task.ID, service.TaskPatch{Completed: &completed}); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
