package commands_test

import (
	"context"
	"flag"
	"io"
	"reflect"
	"strings"
	"testing"

	"gtodo/internal/commands"
	"gtodo/internal/config"
	"gtodo/internal/exitcode"
	"gtodo/internal/service"
)

type stubCmd struct {
	name    string
	aliases []string
}

func (c *stubCmd) Name() string                   { return c.name }
func (c *stubCmd) Aliases() []string              { return c.aliases }
func (c *stubCmd) Synopsis() string               { return "stub " + c.name }
func (c *stubCmd) Usage() string                  { return "gtodo " + c.name }
func (c *stubCmd) NeedsStore() bool               { return false }
func (c *stubCmd) NeedsLogin() bool               { return false }
func (c *stubCmd) AutoSync() bool                 { return false }
func (c *stubCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *stubCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return exitcode.Success
}

func names(cmds []commands.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Name()
	}
	return out
}

func TestRegistry_FindByAlias(t *testing.T) {
	r := commands.NewRegistry()
	sync := &stubCmd{name: "sync", aliases: []string{"push"}}
	if err := r.Register(sync); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, name := range []string{"sync", "push"} {
		got, ok := r.Find(name)
		if !ok || got != sync {
			t.Errorf("Find(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := r.Find("pull"); ok {
		t.Error("expected unknown name to miss")
	}
}

func TestRegistry_Collisions(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&stubCmd{name: "add", aliases: []string{"create"}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name string
		cmd  *stubCmd
	}{
		{"duplicate name", &stubCmd{name: "add"}},
		{"name taken by alias", &stubCmd{name: "create"}},
		{"alias taken by name", &stubCmd{name: "new", aliases: []string{"add"}}},
		{"alias taken by alias", &stubCmd{name: "new", aliases: []string{"create"}}},
		{"alias repeats name", &stubCmd{name: "new", aliases: []string{"new"}}},
		{"empty name", &stubCmd{name: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.cmd); err == nil {
				t.Error("expected an error")
			}
		})
	}

	// Rejected registrations leave nothing behind.
	if got := names(r.All()); !reflect.DeepEqual(got, []string{"add"}) {
		t.Errorf("expected only add, got %v", got)
	}
}

func TestRegistry_AllSortedOnce(t *testing.T) {
	r := commands.NewRegistry()
	for _, c := range []*stubCmd{
		{name: "rm", aliases: []string{"delete"}},
		{name: "add", aliases: []string{"create"}},
		{name: "list", aliases: []string{"ls"}},
	} {
		if err := r.Register(c); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}

	if got := names(r.All()); !reflect.DeepEqual(got, []string{"add", "list", "rm"}) {
		t.Errorf("unexpected order %v", got)
	}
}

func TestRegistry_Suggest(t *testing.T) {
	r := commands.NewRegistry()
	r.Register(&stubCmd{name: "sync", aliases: []string{"push"}})
	r.Register(&stubCmd{name: "settings"})
	r.Register(&stubCmd{name: "status"})

	if got := r.Suggest("s"); !reflect.DeepEqual(got, []string{"settings", "status", "sync"}) {
		t.Errorf("unexpected suggestions %v", got)
	}
	if got := r.Suggest("pu"); !reflect.DeepEqual(got, []string{"push"}) {
		t.Errorf("expected alias suggestion, got %v", got)
	}
	if got := r.Suggest(""); got != nil {
		t.Errorf("expected no suggestions for empty input, got %v", got)
	}
}

func TestHelpCommand_ListsRegistry(t *testing.T) {
	r := commands.NewRegistry()
	r.Register(&stubCmd{name: "sync", aliases: []string{"push"}})
	r.Register(&stubCmd{name: "add"})

	stdout, _, code := runCommand(t, &commands.HelpCmd{Registry: r}, nil, nil, false)

	expectCode(t, exitcode.Success, code)
	add := strings.Index(stdout, "gtodo add\n")
	sync := strings.Index(stdout, "gtodo sync\n")
	if add < 0 || sync < 0 || add > sync {
		t.Errorf("expected add then sync in help:\n%s", stdout)
	}
	if !strings.Contains(stdout, "stub sync (aliases: push)") {
		t.Errorf("expected aliases in help:\n%s", stdout)
	}
	if strings.Contains(stdout, "gtodo rmlist") {
		t.Errorf("help must only list the given registry:\n%s", stdout)
	}
}
