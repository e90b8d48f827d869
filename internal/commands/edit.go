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
)

func init() {
	Register(&EditCmd{})
}

// optString is a string flag that records whether it was given, so an
// empty value can clear a field.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	notes    optString
	due      optString
	priority optString
	list     optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "gtodo edit [--title <t>] [--notes <n>] [--due <date>|\"\"] [--priority <p>] [--list <list>] <ref>"
}
func (c *EditCmd) NeedsStore() bool { return true }
func (c *EditCmd) NeedsLogin() bool { return true }
func (c *EditCmd) AutoSync() bool   { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.notes, "notes", "")
	fs.Var(&c.due, "due", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.list, "list", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code, found := resolveTaskArgs(svc, args, errOut)
	if !found {
		return code
	}

	var patch service.TaskPatch
	if c.title.set {
		title := strings.TrimSpace(c.title.value)
		if title == "" {
			fmt.Fprintln(errOut, "error: title required")
			return exitcode.UserError
		}
		patch.Title = &title
	}
	if c.notes.set {
		patch.Notes = &c.notes.value
	}
	if c.due.set {
		due, err := service.ParseDate(c.due.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: invalid date: %s (want YYYY-MM-DD)\n", c.due.value)
			return exitcode.UserError
		}
		patch.DueDate = &due
	}
	if c.priority.set {
		p := service.Priority(c.priority.value)
		if !p.Valid() {
			fmt.Fprintf(errOut, "error: invalid priority: %s (want low, medium or high)\n", c.priority.value)
			return exitcode.UserError
		}
		patch.Priority = &p
	}
	if c.list.set {
		list, err := resolveList(svc, c.list.value)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		patch.ListID = &list.ID
	}

	if patch.IsEmpty() {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	if err := svc.UpdateTask(task.ID, patch); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
