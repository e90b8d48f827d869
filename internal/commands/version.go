package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

// Version is the application version. Set at build time with
// -ldflags "-X gtodo/internal/commands.Version=...".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command. With --build it also prints
// the toolchain and the resolved module versions of the binary.
type VersionCmd struct {
	build bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "gtodo version [--build]" }
func (c *VersionCmd) NeedsStore() bool  { return false }
func (c *VersionCmd) NeedsLogin() bool  { return false }
func (c *VersionCmd) AutoSync() bool    { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.build, "build", false, "")
}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "gtodo %s\n", Version)
	if !c.build {
		return exitcode.Success
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(out, "build info unavailable")
		return exitcode.Success
	}
	fmt.Fprintf(out, "go %s\n", strings.TrimPrefix(info.GoVersion, "go"))
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		fmt.Fprintf(out, "  %s %s\n", dep.Path, dep.Version)
	}
	return exitcode.Success
}
