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
	Register(&CreateListCmd{})
}

// CreateListCmd implements the createlist command.
type CreateListCmd struct{}

func (c *CreateListCmd) Name() string      { return "createlist" }
func (c *CreateListCmd) Aliases() []string { return []string{"addlist"} }
func (c *CreateListCmd) Synopsis() string  { return "Create a new list" }
func (c *CreateListCmd) Usage() string     { return "gtodo createlist [common flags] <list-name>" }
func (c *CreateListCmd) NeedsStore() bool  { return true }
func (c *CreateListCmd) NeedsLogin() bool  { return false }
func (c *CreateListCmd) AutoSync() bool    { return true }

func (c *CreateListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form list name
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	// Check if list already exists
	for _, l := range svc.Lists() {
		if strings.EqualFold(l.Title, name) {
			fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
			return exitcode.UserError
		}
	}

	list, err := svc.AddList(name)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok %s\n", list.ID)
	}
	return exitcode.Success
}
