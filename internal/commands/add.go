package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
	"gtodo/internal/views"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
	due      string
	view     string
	priority string
	notes    string
}

// SetListName sets the list name (for testing).
func (c *AddCmd) SetListName(name string) {
	c.listName = name
}

// SetView sets the view the task is added from (for testing).
func (c *AddCmd) SetView(view string) {
	c.view = view
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "gtodo add [--list <list>] [--due <date>] [--view <view>] [--priority <p>] [--notes <text>] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }
func (c *AddCmd) NeedsLogin() bool { return true }
func (c *AddCmd) AutoSync() bool   { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.view, "view", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.notes, "notes", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	due, err := service.ParseDate(c.due)
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid date: %s (want YYYY-MM-DD)\n", c.due)
		return exitcode.UserError
	}

	if c.priority != "" && !service.Priority(c.priority).Valid() {
		fmt.Fprintf(errOut, "error: invalid priority: %s (want low, medium or high)\n", c.priority)
		return exitcode.UserError
	}

	if c.listName != "" && c.view != "" {
		fmt.Fprintln(errOut, "error: cannot use both --list and --view")
		return exitcode.UserError
	}

	var task service.Task
	switch {
	case c.view != "":
		view := c.view
		if !views.IsSmart(view) {
			list, err := resolveList(svc, view)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
			view = list.ID
		}
		task, err = svc.AddTaskInView(view, title, due)
		if err == nil && (c.priority != "" || c.notes != "") {
			err = svc.UpdateTask(task.ID, c.extras())
		}
	default:
		nt := service.NewTask{
			Title:    title,
			DueDate:  due,
			Priority: service.Priority(c.priority),
			Notes:    c.notes,
		}
		if c.listName != "" {
			list, err := resolveList(svc, c.listName)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
			nt.ListID = list.ID
		}
		task, err = svc.AddTask(nt)
	}
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", task.ID)
	}
	return exitcode.Success
}

func (c *AddCmd) extras() service.TaskPatch {
	var p service.TaskPatch
	if c.priority != "" {
		pr := service.Priority(c.priority)
		p.Priority = &pr
	}
	if c.notes != "" {
		p.Notes = &c.notes
	}
	return p
}
