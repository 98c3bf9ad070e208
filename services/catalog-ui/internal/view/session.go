package view

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/platform/metrics"
	"github.com/example/media-catalog/services/catalog-ui/internal/form"
	"github.com/example/media-catalog/services/catalog-ui/internal/listctl"
	"github.com/example/media-catalog/services/catalog-ui/internal/mediaapi"
	"github.com/example/media-catalog/services/catalog-ui/internal/scroll"
)

// Session is one browser's view of the catalog.
type Session struct {
	ID      string
	List    *listctl.Controller
	Bus     *scroll.Bus
	Trigger *scroll.Trigger
	Form    *form.Form

	mounted sync.Once

	mu            sync.Mutex
	flash         string
	confirmDelete string
	lastSeen      time.Time
}

func newSession(id string, api mediaapi.Provider, opts listctl.Options, log *zap.Logger) *Session {
	log = log.With(zap.String("session_id", id))
	opts.Logger = log
	ctl := listctl.New(api, opts)
	bus := scroll.NewBus()
	return &Session{
		ID:      id,
		List:    ctl,
		Bus:     bus,
		Trigger: scroll.New(bus, ctl, ctl.LoadNext, log),
		Form:    form.New(api, log),
	}
}

// Mount runs the initial load once per session.
func (s *Session) Mount(ctx context.Context) {
	s.mounted.Do(func() {
		_ = s.List.LoadInitial(ctx)
	})
}

func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	s.flash = msg
	s.mu.Unlock()
}

// TakeFlash returns the pending message and clears it.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) SetConfirmDelete(id string) {
	s.mu.Lock()
	s.confirmDelete = id
	s.mu.Unlock()
}

func (s *Session) ConfirmDelete() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.confirmDelete
}

// Dispose stops the trigger and drops the list.
func (s *Session) Dispose() {
	s.Trigger.Close()
	s.List.Dispose()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Sessions keeps sessions in memory and expires idle ones.
type Sessions struct {
	mu    sync.Mutex
	items map[string]*Session
	ttl   time.Duration
	build func(id string) *Session
	now   func() time.Time
	log   *zap.Logger
}

func NewSessions(ttl time.Duration, api mediaapi.Provider, opts listctl.Options, log *zap.Logger) *Sessions {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{
		items: make(map[string]*Session),
		ttl:   ttl,
		build: func(id string) *Session { return newSession(id, api, opts, log) },
		now:   time.Now,
		log:   log,
	}
}

// Get returns a live session and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	sess, ok := s.items[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.idleSince()) > s.ttl {
		s.remove(id, sess)
		return nil, false
	}
	sess.touch(now)
	return sess, true
}

func (s *Sessions) Create() *Session {
	sess := s.build(uuid.NewString())
	sess.touch(s.now())
	s.mu.Lock()
	s.items[sess.ID] = sess
	metrics.SetSessions(len(s.items))
	s.mu.Unlock()
	return sess
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Sweep disposes every idle session and returns how many were removed.
func (s *Sessions) Sweep() int {
	now := s.now()
	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.items {
		if now.Sub(sess.idleSince()) > s.ttl {
			stale = append(stale, sess)
			delete(s.items, id)
		}
	}
	metrics.SetSessions(len(s.items))
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Dispose()
	}
	if len(stale) > 0 {
		s.log.Debug("expired sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps on every tick until ctx ends, then disposes all sessions.
func (s *Sessions) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *Sessions) Close() {
	s.mu.Lock()
	all := make([]*Session, 0, len(s.items))
	for _, sess := range s.items {
		all = append(all, sess)
	}
	s.items = make(map[string]*Session)
	metrics.SetSessions(0)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Dispose()
	}
}

func (s *Sessions) remove(id string, sess *Session) {
	s.mu.Lock()
	cur, ok := s.items[id]
	if ok && cur == sess {
		delete(s.items, id)
		metrics.SetSessions(len(s.items))
	}
	s.mu.Unlock()
	if ok && cur == sess {
		sess.Dispose()
	}
}
