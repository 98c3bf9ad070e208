package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/media-catalog/internal/media"
)

// InMemoryMediaStore is a development-only in-memory implementation.
type InMemoryMediaStore struct {
	mu      sync.RWMutex
	records map[string]media.Record
	seq     map[string]uint64 // id -> insertion sequence, breaks CreatedAt ties
	next    uint64
	now     func() time.Time
}

func NewInMemoryMediaStore() *InMemoryMediaStore {
	return &InMemoryMediaStore{
		records: make(map[string]media.Record),
		seq:     make(map[string]uint64),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryMediaStore) List(_ context.Context, page, limit int) ([]media.Record, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]media.Record, 0, len(s.records))
	for _, r := range s.records {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return s.seq[all[i].ID] > s.seq[all[j].ID]
	})

	total := len(all)
	start := offset(page, limit)
	if start >= total {
		return []media.Record{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *InMemoryMediaStore) Create(_ context.Context, f media.Fields) (media.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	r := media.Record{
		ID:          uuid.NewString(),
		Title:       f.Title,
		Kind:        f.Kind,
		Director:    f.Director,
		Budget:      f.Budget,
		Location:    f.Location,
		Duration:    f.Duration,
		ReleaseYear: f.ReleaseYear,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.next++
	s.seq[r.ID] = s.next
	s.records[r.ID] = r
	return r, nil
}

func (s *InMemoryMediaStore) Update(_ context.Context, id string, f media.Fields) (media.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return media.Record{}, ErrNotFound
	}
	r.Title = f.Title
	r.Kind = f.Kind
	r.Director = f.Director
	r.Budget = f.Budget
	r.Location = f.Location
	r.Duration = f.Duration
	r.ReleaseYear = f.ReleaseYear
	r.UpdatedAt = s.now()
	s.records[id] = r
	return r, nil
}

func (s *InMemoryMediaStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	delete(s.seq, id)
	return nil
}
