package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
	"gtodo/internal/views"
)

func init() {
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Print views and lists with open task counts" }
func (c *ListsCmd) Usage() string     { return "gtodo lists [common flags]" }
func (c *ListsCmd) NeedsStore() bool  { return true }
func (c *ListsCmd) NeedsLogin() bool  { return true }
func (c *ListsCmd) AutoSync() bool    { return true }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tasks := svc.GetTasks(nil)
	d := views.DatesAt(time.Now())

	for _, v := range views.Smart {
		output.FormatViewCount(out, v, views.Count(tasks, v, d))
	}
	lists := svc.Lists()
	if len(lists) > 0 {
		io.WriteString(out, output.ListSeparator+"\n")
	}
	for _, list := range lists {
		output.FormatList(out, list, views.Count(tasks, list.ID, d))
	}

	return exitcode.Success
}
