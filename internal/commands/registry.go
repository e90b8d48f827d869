package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names and aliases to commands.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Command
	aliases map[string]string // alias -> primary name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:  make(map[string]Command),
		aliases: make(map[string]string),
	}
}

// Register adds c under its name and aliases. Names and aliases share one
// namespace; any collision is an error and leaves the registry unchanged.
func (r *Registry) Register(c Command) error {
	name := c.Name()
	if name == "" {
		return errors.New("command has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.takenLocked(name) {
		return fmt.Errorf("command already registered: %s", name)
	}
	seen := map[string]bool{name: true}
	for _, alias := range c.Aliases() {
		if alias == "" || seen[alias] || r.takenLocked(alias) {
			return fmt.Errorf("alias %q of %s already registered", alias, name)
		}
		seen[alias] = true
	}

	r.byName[name] = c
	for _, alias := range c.Aliases() {
		r.aliases[alias] = name
	}
	return nil
}

func (r *Registry) takenLocked(name string) bool {
	if _, ok := r.byName[name]; ok {
		return true
	}
	_, ok := r.aliases[name]
	return ok
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if primary, ok := r.aliases[name]; ok {
		name = primary
	}
	cmd, ok := r.byName[name]
	return cmd, ok
}

// All returns each command once, sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.byName[name]
	}
	return result
}

// Suggest returns the names and aliases that start with prefix, sorted.
func (r *Registry) Suggest(prefix string) []string {
	if prefix == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for name := range r.byName {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	for alias := range r.aliases {
		if strings.HasPrefix(alias, prefix) {
			out = append(out, alias)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry holds every command registered by this package.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry and panics on a
// collision, which is a programming error.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
