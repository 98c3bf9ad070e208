// Package listctl owns the in-memory catalog list: the records fetched so far,
// the pagination cursor, and the loading flag shared by the initial load and
// scroll-driven loads.
package listctl

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/example/media-catalog/internal/media"
	"github.com/example/media-catalog/internal/platform/metrics"
)

// DefaultPageSize is the page size requested from the backend.
const DefaultPageSize = 10

// ErrDisposed is returned once the owning view has gone away.
var ErrDisposed = errors.New("listctl: controller disposed")

// Lister fetches one page of records.
type Lister interface {
	List(ctx context.Context, page, limit int) (*media.Page, error)
}

type Options struct {
	PageSize int
	// DedupeOnAppend drops records from an appended page whose id is
	// already in the list.
	DedupeOnAppend bool
	Logger         *zap.Logger
}

// State is a point-in-time copy of the controller.
type State struct {
	Records  []media.Record
	NextPage int
	HasMore  bool
	Loading  bool
	Err      error
}

type Controller struct {
	api      Lister
	pageSize int
	dedupe   bool
	log      *zap.Logger

	mu       sync.Mutex
	records  []media.Record
	next     int
	hasMore  bool
	loading  bool
	disposed bool
	err      error
}

func New(api Lister, opts Options) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		api:      api,
		pageSize: opts.PageSize,
		dedupe:   opts.DedupeOnAppend,
		log:      opts.Logger,
		next:     1,
		hasMore:  true,
	}
}

// LoadInitial fetches page 1 and replaces the collection with it. It is a
// no-op while another load is running.
func (c *Controller) LoadInitial(ctx context.Context) error {
	if !c.begin(false) {
		return c.skipped()
	}

	page, err := c.api.List(ctx, 1, c.pageSize)
	metrics.PageLoad("initial", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.disposed {
		return ErrDisposed
	}
	if err != nil {
		c.err = err
		c.log.Warn("initial load failed", zap.Error(err))
		return err
	}

	fetched := max(page.Meta.Page, 1)
	c.records = c.merge(nil, page.Data)
	c.next = fetched + 1
	c.hasMore = !page.Meta.Last()
	c.err = nil
	c.log.Debug("initial page loaded",
		zap.Int("records", len(c.records)),
		zap.Int("total", page.Meta.Total),
		zap.Bool("has_more", c.hasMore),
	)
	return nil
}

// LoadNext fetches the page at the cursor and appends it. It is a no-op when
// the last page has been reached or a load is running.
func (c *Controller) LoadNext(ctx context.Context) error {
	if !c.begin(true) {
		return c.skipped()
	}

	c.mu.Lock()
	cursor := c.next
	c.mu.Unlock()

	page, err := c.api.List(ctx, cursor, c.pageSize)
	metrics.PageLoad("next", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.disposed {
		return ErrDisposed
	}
	if err != nil {
		c.err = err
		c.log.Warn("next page load failed", zap.Int("page", cursor), zap.Error(err))
		return err
	}

	before := len(c.records)
	c.records = c.merge(c.records, page.Data)
	c.next = cursor + 1
	c.hasMore = !page.Meta.Last()
	c.err = nil
	c.log.Debug("page appended",
		zap.Int("page", cursor),
		zap.Int("added", len(c.records)-before),
		zap.Bool("has_more", c.hasMore),
	)
	return nil
}

// begin claims the loading flag. When requireMore is set it also refuses once
// the last page is in.
func (c *Controller) begin(requireMore bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed || c.loading || (requireMore && !c.hasMore) {
		return false
	}
	c.loading = true
	return true
}

func (c *Controller) skipped() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return ErrDisposed
	}
	return nil
}

// merge returns a new slice holding dst followed by src. Caller holds mu.
func (c *Controller) merge(dst, src []media.Record) []media.Record {
	out := make([]media.Record, 0, len(dst)+len(src))
	out = append(out, dst...)
	if !c.dedupe {
		return append(out, src...)
	}

	seen := make(map[string]struct{}, len(out)+len(src))
	for _, r := range out {
		seen[r.ID] = struct{}{}
	}
	dropped := 0
	for _, r := range src {
		if _, dup := seen[r.ID]; dup {
			dropped++
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	if dropped > 0 {
		c.log.Debug("dropped duplicate records", zap.Int("count", dropped))
	}
	return out
}

// ApplyCreated puts r at the front of the list.
func (c *Controller) ApplyCreated(r media.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	out := make([]media.Record, 0, len(c.records)+1)
	out = append(out, r)
	c.records = append(out, c.records...)
}

// ApplyUpdated replaces the record with r's id in place. It reports false when
// no such record is loaded.
func (c *Controller) ApplyUpdated(r media.Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return false
	}
	for i := range c.records {
		if c.records[i].ID == r.ID {
			out := append([]media.Record(nil), c.records...)
			out[i] = r
			c.records = out
			return true
		}
	}
	c.log.Debug("updated record not in list", zap.String("media_id", r.ID))
	return false
}

// ApplyDeleted removes every record with the given id and returns how many
// were removed.
func (c *Controller) ApplyDeleted(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return 0
	}
	out := make([]media.Record, 0, len(c.records))
	for _, r := range c.records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	removed := len(c.records) - len(out)
	c.records = out
	return removed
}

// Find returns the loaded record with the given id.
func (c *Controller) Find(id string) (media.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.ID == id {
			return r, true
		}
	}
	return media.Record{}, false
}

func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore && !c.disposed
}

func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Records:  append([]media.Record(nil), c.records...),
		NextPage: c.next,
		HasMore:  c.hasMore,
		Loading:  c.loading,
		Err:      c.err,
	}
}

// Dispose discards the list. Loads that finish afterwards are dropped.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	c.records = nil
}
