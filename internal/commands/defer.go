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
	Register(&DeferCmd{})
}

// DeferCmd implements the defer command.
type DeferCmd struct{}

func (c *DeferCmd) Name() string      { return "defer" }
func (c *DeferCmd) Aliases() []string { return nil }
func (c *DeferCmd) Synopsis() string  { return "Move today's open tasks to tomorrow" }
func (c *DeferCmd) Usage() string     { return "gtodo defer" }
func (c *DeferCmd) NeedsStore() bool  { return true }
func (c *DeferCmd) NeedsLogin() bool  { return true }
func (c *DeferCmd) AutoSync() bool    { return true }

func (c *DeferCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DeferCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	n, err := svc.DeferToday()
	if err != nil {
		return reportError(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %d deferred\n", n)
	}
	return exitcode.Success
}
