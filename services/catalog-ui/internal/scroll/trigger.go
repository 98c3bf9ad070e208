package scroll

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Gate exposes the list state the trigger consults before fetching.
type Gate interface {
	HasMore() bool
	IsLoading() bool
}

// FetchFunc loads the next page.
type FetchFunc func(ctx context.Context) error

// Trigger starts at most one fetch at a time when a signal reaches the bottom
// of the document while the gate allows it.
type Trigger struct {
	gate  Gate
	fetch FetchFunc
	log   *zap.Logger

	mu     sync.Mutex
	done   chan struct{}
	closed bool
	unsub  func()
	wg     sync.WaitGroup
}

func New(src Source, gate Gate, fetch FetchFunc, log *zap.Logger) *Trigger {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Trigger{gate: gate, fetch: fetch, log: log}
	t.unsub = src.Subscribe(t.handle)
	return t
}

func (t *Trigger) handle(sig Signal) {
	t.mu.Lock()
	if t.closed || t.done != nil {
		t.mu.Unlock()
		return
	}
	if !t.gate.HasMore() || t.gate.IsLoading() || !sig.AtBottom() {
		t.mu.Unlock()
		return
	}
	done := make(chan struct{})
	t.done = done
	t.wg.Add(1)
	t.mu.Unlock()

	go t.run(done)
}

func (t *Trigger) run(done chan struct{}) {
	defer t.wg.Done()

	if err := t.fetch(context.Background()); err != nil {
		t.log.Warn("scroll fetch failed", zap.Error(err))
	}

	t.mu.Lock()
	t.done = nil
	t.mu.Unlock()
	close(done)
}

// Active reports whether a fetch is in flight.
func (t *Trigger) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

// Wait blocks until the in-flight fetch, if any, finishes or ctx ends.
func (t *Trigger) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops listening and waits for an in-flight fetch to return.
// Later signals are ignored.
func (t *Trigger) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	unsub := t.unsub
	t.mu.Unlock()

	unsub()
	t.wg.Wait()
}
