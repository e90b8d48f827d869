package commands

import (
	"context"
	"flag"
	"io"

	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/output"
	"gtodo/internal/service"
)

func init() {
	Register(&SettingsCmd{})
}

// SettingsCmd implements the settings command.
type SettingsCmd struct {
	token  optString
	gistID optString
}

func (c *SettingsCmd) Name() string      { return "settings" }
func (c *SettingsCmd) Aliases() []string { return nil }
func (c *SettingsCmd) Synopsis() string  { return "Show or change the gist backup credentials" }
func (c *SettingsCmd) Usage() string     { return "gtodo settings [--token <token>] [--gist-id <id>]" }
func (c *SettingsCmd) NeedsStore() bool  { return true }
func (c *SettingsCmd) NeedsLogin() bool  { return false }
func (c *SettingsCmd) AutoSync() bool    { return false }

func (c *SettingsCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = SettingsCmd{}
	fs.Var(&c.token, "token", "")
	fs.Var(&c.gistID, "gist-id", "")
}

func (c *SettingsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.token.set && !c.gistID.set {
		output.FormatSettings(out, svc.Settings())
		return exitcode.Success
	}

	var patch service.SettingsPatch
	if c.token.set {
		patch.GistToken = &c.token.value
	}
	if c.gistID.set {
		patch.GistID = &c.gistID.value
	}
	if err := svc.UpdateSettings(patch); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
