package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
	"gtodo/internal/views"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `gtodo` (no args) and `gtodo list --view <view>`.
type ListCmd struct {
	view          string
	hideCompleted bool
	notes         bool
}

// SetView sets the view (for testing).
func (c *ListCmd) SetView(view string) {
	c.view = view
}

// SetHideCompleted sets the hide-completed flag (for testing).
func (c *ListCmd) SetHideCompleted(hide bool) {
	c.hideCompleted = hide
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "gtodo list [--view <view>] [--hide-completed] [--notes]"
}
func (c *ListCmd) NeedsStore() bool { return true }
func (c *ListCmd) NeedsLogin() bool { return true }
func (c *ListCmd) AutoSync() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.view, "view", views.All, "")
	fs.StringVar(&c.view, "v", views.All, "")
	fs.BoolVar(&c.hideCompleted, "hide-completed", false, "")
	fs.BoolVar(&c.notes, "notes", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	view := c.view
	if view == "" {
		view = views.All
	}
	title := views.Title(view)
	if !views.IsSmart(view) {
		list, err := resolveList(svc, view)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		view, title = list.ID, list.Title
	}

	// Number tasks by their position in the all view so that refs
	// printed here work with done, edit and rm.
	all := svc.GetTasks(nil)
	pos := make(map[string]int, len(all))
	for i, t := range all {
		pos[t.ID] = i + 1
	}

	tasks := views.Apply(all, views.Filter(view, views.DatesAt(time.Now()), c.hideCompleted))
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	if view != views.All {
		output.FormatViewHeader(out, title)
	}
	for _, t := range tasks {
		output.FormatTask(out, pos[t.ID], t)
		if c.notes {
			output.FormatNotes(out, t)
		}
	}
	return exitcode.Success
}
