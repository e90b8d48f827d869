// Package storage persists the application state through a key-value
// backend.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gtodo/internal/service"
)

const (
	// StateKey holds the JSON-serialized application state.
	StateKey = "gtodo_state_v1"

	// UserKey holds the current owner's username as a bare string.
	UserKey = "gtodo_user"
)

// ErrNotFound is returned by a KV when a key has no value.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value backend. Set must replace the prior value
// atomically: readers see either the old or the new value, never a
// partial write.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Adapter is the local persistence adapter. It holds no state of its own.
type Adapter struct {
	kv  KV
	log *slog.Logger
}

// NewAdapter wraps kv. A nil logger discards.
func NewAdapter(kv KV, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{kv: kv, log: log}
}

// Save writes the full state under StateKey.
func (a *Adapter) Save(ctx context.Context, state service.State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, StateKey, data); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Load reads the state. It reports false when nothing is stored or the
// stored value cannot be read or parsed; the caller falls back to defaults.
func (a *Adapter) Load(ctx context.Context) (service.State, bool) {
	data, err := a.kv.Get(ctx, StateKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.Warn("failed to read local state", "err", err)
		}
		return service.State{}, false
	}
	state, err := Decode(data)
	if err != nil {
		a.log.Warn("discarding corrupt local state", "err", err)
		return service.State{}, false
	}
	return state, true
}

// SaveUser stores the current owner.
func (a *Adapter) SaveUser(ctx context.Context, user string) error {
	if err := a.kv.Set(ctx, UserKey, []byte(user)); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// LoadUser returns the stored owner, or "" when none is stored.
func (a *Adapter) LoadUser(ctx context.Context) string {
	data, err := a.kv.Get(ctx, UserKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.Warn("failed to read current user", "err", err)
		}
		return ""
	}
	return string(data)
}

// ClearUser removes the stored owner.
func (a *Adapter) ClearUser(ctx context.Context) error {
	if err := a.kv.Delete(ctx, UserKey); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to clear user: %w", err)
	}
	return nil
}

// Close closes the backend.
func (a *Adapter) Close() error {
	return a.kv.Close()
}

// Encode serializes a state. The remote backup uses the same encoding.
func Encode(state service.State) ([]byte, error) {
	if state.Lists == nil {
		state.Lists = []service.TaskList{}
	}
	if state.Tasks == nil {
		state.Tasks = []service.Task{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// Decode parses a serialized state.
func Decode(data []byte) (service.State, error) {
	var state service.State
	if err := json.Unmarshal(data, &state); err != nil {
		return service.State{}, fmt.Errorf("failed to decode state: %w", err)
	}
	return state, nil
}
