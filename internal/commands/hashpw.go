package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"golang.org/x/crypto/bcrypt"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

func init() {
	Register(&HashPwCmd{})
}

// HashPwCmd implements the hashpw command.
type HashPwCmd struct {
	cost int
}

func (c *HashPwCmd) Name() string      { return "hashpw" }
func (c *HashPwCmd) Aliases() []string { return nil }
func (c *HashPwCmd) Synopsis() string  { return "Print a password hash for the users table" }
func (c *HashPwCmd) Usage() string     { return "gtodo hashpw [--cost <n>] <password>" }
func (c *HashPwCmd) NeedsStore() bool  { return false }
func (c *HashPwCmd) NeedsLogin() bool  { return false }
func (c *HashPwCmd) AutoSync() bool    { return false }

func (c *HashPwCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.cost, "cost", bcrypt.DefaultCost, "")
}

func (c *HashPwCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(errOut, "error: password required")
		return exitcode.UserError
	}
	if c.cost < bcrypt.MinCost || c.cost > bcrypt.MaxCost {
		fmt.Fprintf(errOut, "error: invalid cost: %d\n", c.cost)
		return exitcode.UserError
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), c.cost)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintln(out, string(hash))
	return exitcode.Success
}
