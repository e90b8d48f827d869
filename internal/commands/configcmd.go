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
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command.
type ConfigCmd struct {
	writeFile bool
}

// SetInit sets the init flag (for testing).
func (c *ConfigCmd) SetInit(v bool) {
	c.writeFile = v
}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Print the effective configuration" }
func (c *ConfigCmd) Usage() string     { return "gtodo config [--init]" }
func (c *ConfigCmd) NeedsStore() bool  { return false }
func (c *ConfigCmd) NeedsLogin() bool  { return false }
func (c *ConfigCmd) AutoSync() bool    { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.writeFile, "init", false, "")
}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.writeFile {
		if err := cfg.WriteDefault(); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "ok %s\n", cfg.FilePath())
		}
		return exitcode.Success
	}

	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(out, "# %s\n", cfg.FilePath())
	out.Write(data)
	return exitcode.Success
}
