// Package notify provides ordered listener registries.
package notify

import "sync"

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Bus delivers values to its listeners synchronously, in subscription
// order. A panicking listener is not recovered.
type Bus[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscriber[T]
}

// Subscribe registers fn. The returned function removes it; calling it
// more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish calls every listener registered at the time of the call.
// Listeners may subscribe or unsubscribe from inside a callback.
func (b *Bus[T]) Publish(v T) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of registered listeners.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
