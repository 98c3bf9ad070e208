package scroll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type gateStub struct {
	mu      sync.Mutex
	more    bool
	loading bool
}

func (g *gateStub) HasMore() bool   { g.mu.Lock(); defer g.mu.Unlock(); return g.more }
func (g *gateStub) IsLoading() bool { g.mu.Lock(); defer g.mu.Unlock(); return g.loading }

var bottom = Signal{ScrollTop: 1200, ViewportHeight: 800, DocumentHeight: 2000}

func TestSignalAtBottom(t *testing.T) {
	cases := []struct {
		sig  Signal
		want bool
	}{
		{Signal{ScrollTop: 0, ViewportHeight: 800, DocumentHeight: 2000}, false},
		{Signal{ScrollTop: 1199, ViewportHeight: 800, DocumentHeight: 2000}, false},
		{bottom, true},
		{Signal{ScrollTop: 1250, ViewportHeight: 800, DocumentHeight: 2000}, true},
		{Signal{ScrollTop: 0, ViewportHeight: 800, DocumentHeight: 500}, true},
	}
	for _, tc := range cases {
		if got := tc.sig.AtBottom(); got != tc.want {
			t.Fatalf("%+v: expected %v, got %v", tc.sig, tc.want, got)
		}
	}
}

func TestTrigger_FetchesOnceWhileActive(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	release := make(chan struct{})
	var calls atomic.Int32
	tr := New(bus, &gateStub{more: true}, func(ctx context.Context) error {
		calls.Add(1)
		<-release
		return nil
	}, nil)
	defer tr.Close()

	for range 5 {
		bus.Publish(bottom)
	}
	if !tr.Active() {
		t.Fatal("expected trigger to be active")
	}
	close(release)
	if err := tr.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
	if tr.Active() {
		t.Fatal("expected trigger to be idle after fetch")
	}
}

func TestTrigger_ReArmsAfterFetch(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	var calls atomic.Int32
	tr := New(bus, &gateStub{more: true}, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}, nil)
	defer tr.Close()

	bus.Publish(bottom)
	_ = tr.Wait(context.Background())
	bus.Publish(bottom)
	_ = tr.Wait(context.Background())

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 fetches, got %d", got)
	}
}

func TestTrigger_IgnoresWhenGated(t *testing.T) {
	cases := []struct {
		name string
		gate *gateStub
		sig  Signal
	}{
		{"no more pages", &gateStub{more: false}, bottom},
		{"already loading", &gateStub{more: true, loading: true}, bottom},
		{"not at bottom", &gateStub{more: true}, Signal{ScrollTop: 10, ViewportHeight: 800, DocumentHeight: 2000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bus := NewBus()
			var calls atomic.Int32
			tr := New(bus, tc.gate, func(ctx context.Context) error {
				calls.Add(1)
				return nil
			}, nil)
			bus.Publish(tc.sig)
			tr.Close()
			if got := calls.Load(); got != 0 {
				t.Fatalf("expected no fetch, got %d", got)
			}
		})
	}
}

func TestTrigger_CloseUnsubscribesAndWaits(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	started := make(chan struct{})
	finished := make(chan struct{})
	tr := New(bus, &gateStub{more: true}, func(ctx context.Context) error {
		close(started)
		time.Sleep(20 * time.Millisecond)
		close(finished)
		return nil
	}, nil)

	bus.Publish(bottom)
	<-started
	tr.Close()

	select {
	case <-finished:
	default:
		t.Fatal("expected Close to wait for the in-flight fetch")
	}
	if n := bus.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers after close, got %d", n)
	}
	bus.Publish(bottom)
	if tr.Active() {
		t.Fatal("expected closed trigger to ignore signals")
	}
	tr.Close()
}

func TestTrigger_WaitHonorsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := NewBus()
	release := make(chan struct{})
	tr := New(bus, &gateStub{more: true}, func(ctx context.Context) error {
		<-release
		return nil
	}, nil)

	bus.Publish(bottom)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := tr.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)
	tr.Close()
}
