// Package kvtest checks storage.KV implementations against the behavior
// the persistence adapter relies on.
package kvtest

import (
	"context"
	"errors"
	"testing"

	"gtodo/internal/storage"
)

// Run exercises kv. It uses the keys "kvtest_a" and "kvtest_b".
func Run(t *testing.T, kv storage.KV) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		if _, err := kv.Get(ctx, "kvtest_a"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := kv.Delete(ctx, "kvtest_a"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on delete, got %v", err)
		}
	})

	t.Run("set get replace", func(t *testing.T) {
		if err := kv.Set(ctx, "kvtest_a", []byte(`{"v":1}`)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := kv.Get(ctx, "kvtest_a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `{"v":1}` {
			t.Errorf("expected first value, got %q", got)
		}

		if err := kv.Set(ctx, "kvtest_a", []byte(`{"v":2}`)); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		got, err = kv.Get(ctx, "kvtest_a")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != `{"v":2}` {
			t.Errorf("expected replaced value, got %q", got)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		if err := kv.Set(ctx, "kvtest_b", []byte("alice")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		a, _ := kv.Get(ctx, "kvtest_a")
		b, _ := kv.Get(ctx, "kvtest_b")
		if string(a) != `{"v":2}` || string(b) != "alice" {
			t.Errorf("unexpected values %q, %q", a, b)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := kv.Delete(ctx, "kvtest_b"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := kv.Get(ctx, "kvtest_b"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if _, err := kv.Get(ctx, "kvtest_a"); err != nil {
			t.Errorf("expected other key kept, got %v", err)
		}
	})
}
