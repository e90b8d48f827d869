package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gtodo/internal/backend/gist"
	"gtodo/internal/storage"
	"gtodo/internal/storage/memory"
	"gtodo/internal/store"
)

// Filename is the backup file name used by stores from NewStore.
const Filename = "todo_backup.json"

// StoreConfig tunes NewStore. Zero fields take test defaults.
type StoreConfig struct {
	KV     storage.KV
	Server *GistServer

	// Users maps usernames to plain passwords; they are hashed here.
	Users map[string]string

	Debounce     time.Duration
	PullInterval time.Duration
	Now          func() time.Time
}

// NewStore builds a store over an in-memory KV and, when sc.Server is set,
// a gist client talking to it. The store is closed when the test ends.
func NewStore(t *testing.T, sc StoreConfig) *store.Store {
	t.Helper()

	kv := sc.KV
	if kv == nil {
		kv = memory.New()
	}
	endpoint := "http://127.0.0.1:1"
	if sc.Server != nil {
		endpoint = sc.Server.URL
	}
	debounce := sc.Debounce
	if debounce == 0 {
		debounce = 20 * time.Millisecond
	}

	s := store.New(store.Options{
		Adapter: storage.NewAdapter(kv, nil),
		Remote: gist.New(gist.Options{
			Endpoint: endpoint,
			Filename: Filename,
			Timeout:  5 * time.Second,
		}),
		Users:        HashUsers(t, sc.Users),
		Debounce:     debounce,
		PullInterval: sc.PullInterval,
		Now:          sc.Now,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Flush(ctx)
		s.Close()
	})
	return s
}

// HashUsers returns a user table with bcrypt hashes of the passwords,
// using the minimum cost.
func HashUsers(t *testing.T, users map[string]string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(users))
	for user, pw := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		out[user] = string(hash)
	}
	return out
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock set to now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the clock's time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// WaitFor polls cond until it holds or two seconds pass.
func WaitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
