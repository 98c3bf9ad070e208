// Package scroll turns viewport scroll observations into incremental page
// fetches.
package scroll

import "sync"

// Signal is one viewport observation reported by the browser.
type Signal struct {
	ScrollTop      int
	ViewportHeight int
	DocumentHeight int
}

// AtBottom reports whether the viewport has reached the end of the document.
func (s Signal) AtBottom() bool {
	return s.ViewportHeight+s.ScrollTop >= s.DocumentHeight
}

// Source delivers signals to subscribers until the returned func is called.
type Source interface {
	Subscribe(fn func(Signal)) (unsubscribe func())
}

// Bus is an in-process Source. Publish calls subscribers synchronously.
type Bus struct {
	mu   sync.RWMutex
	next uint64
	subs map[uint64]func(Signal)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]func(Signal))}
}

func (b *Bus) Subscribe(fn func(Signal)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *Bus) Publish(sig Signal) {
	b.mu.RLock()
	fns := make([]func(Signal), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(sig)
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
