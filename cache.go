package kermesse

import (
	"context"
	"sync"
)

// LoadFunc produces one full dataset. Every successful load replaces the
// dataset wholesale; there is no incremental merge.
type LoadFunc[D any] func(ctx context.Context) (D, error)

// Snapshot is a point-in-time read of a cache's dataset.
type Snapshot[D any] struct {
	Data    D
	Loading bool
	Err     error
}

// Cache keeps one derived dataset consistent with the backend for one
// scoped query. It guarantees at most one in-flight load at a time:
// concurrent Load calls coalesce onto the pending load's eventual result,
// and a change notification arriving mid-load schedules exactly one
// follow-up load once the current one completes. No notification is
// silently dropped; redundant concurrent loads collapse to one.
//
// The dataset D is either a list ([]Product, []Order, ...) or an aggregate
// (SalesStats). On a failed load the dataset resets to its zero value: a
// list shows as empty and a stats aggregate as zero, never stale positive
// numbers presented as current.
type Cache[D any] struct {
	mu       sync.Mutex
	loader   LoadFunc[D]
	data     D
	err      error
	loading  bool
	pending  bool
	inflight chan struct{}

	feed    *ChangeFeed
	table   string
	watches []cacheWatch
	unsubs  []func()

	base   context.Context
	logger Logger
}

// cacheWatch is one feed subscription the cache holds while started.
type cacheWatch struct {
	table       string
	filterKey   string
	filterValue string
}

// CacheOption customizes cache construction
type CacheOption[D any] func(*Cache[D])

// WithCacheLogger overrides the cache's logger.
func WithCacheLogger[D any](logger Logger) CacheOption[D] {
	return func(c *Cache[D]) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCacheWatch subscribes the cache to an additional table. Datasets
// derived from more than one collection reload on mutations to any of them.
func WithCacheWatch[D any](table, filterKey, filterValue string) CacheOption[D] {
	return func(c *Cache[D]) {
		if table != "" {
			c.watches = append(c.watches, cacheWatch{
				table:       table,
				filterKey:   filterKey,
				filterValue: filterValue,
			})
		}
	}
}

// NewCache returns a cache over loader, subscribed on Start to changes on
// table filtered by filterKey = filterValue. A nil feed or empty table
// yields a load-only cache with no notifications.
func NewCache[D any](loader LoadFunc[D], feed *ChangeFeed, table, filterKey, filterValue string, opts ...CacheOption[D]) *Cache[D] {
	c := &Cache[D]{
		loader: loader,
		feed:   feed,
		table:  table,
		logger: defLogger{},
	}

	if table != "" {
		c.watches = append(c.watches, cacheWatch{
			table:       table,
			filterKey:   filterKey,
			filterValue: filterValue,
		})
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Start performs the mount sequence: one synchronous load, then the feed
// subscription whose handler reloads. Teardown is Stop.
func (c *Cache[D]) Start(ctx context.Context) (D, error) {
	c.mu.Lock()
	c.base = ctx
	c.mu.Unlock()

	data, err := c.Load(ctx)

	if c.feed != nil {
		unsubs := make([]func(), 0, len(c.watches))
		for _, w := range c.watches {
			unsubs = append(unsubs, c.feed.Subscribe(w.table, w.filterKey, w.filterValue, func(Change) {
				c.Refresh()
			}))
		}
		c.mu.Lock()
		c.unsubs = unsubs
		c.mu.Unlock()
	}

	return data, err
}

// Stop releases the feed subscription. A load already in flight completes
// on its own; its result lands in the cache and is simply never read again.
func (c *Cache[D]) Stop() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Load fetches the dataset. If a load is already in flight the call does
// not issue a second backend read; it waits for the pending load and
// returns its result.
func (c *Cache[D]) Load(ctx context.Context) (D, error) {
	c.mu.Lock()
	if c.loading {
		ch := c.inflight
		c.mu.Unlock()
		<-ch
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.data, c.err
	}

	c.loading = true
	c.inflight = make(chan struct{})
	c.mu.Unlock()

	for {
		data, err := c.loader(ctx)

		c.mu.Lock()
		if err != nil {
			var zero D
			c.data = zero
			c.err = err
			c.logger.Warn("cache load failed for %s: %s", c.table, err)
		} else {
			c.data = data
			c.err = nil
		}

		// release everyone coalesced onto this load
		close(c.inflight)

		if c.pending {
			// a notification arrived mid-load; go around once more
			c.pending = false
			c.inflight = make(chan struct{})
			c.mu.Unlock()
			continue
		}

		c.loading = false
		data, err = c.data, c.err
		c.mu.Unlock()
		return data, err
	}
}

// Refresh is the notification path: schedule a reload without blocking the
// publisher. If a load is in flight it marks the dataset dirty instead of
// issuing a concurrent read.
func (c *Cache[D]) Refresh() {
	c.mu.Lock()
	if c.loading {
		c.pending = true
		c.mu.Unlock()
		return
	}
	ctx := c.base
	c.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		if _, err := c.Load(ctx); err != nil {
			c.logger.Debug("refresh load failed for %s: %s", c.table, err)
		}
	}()
}

// Snapshot returns the current dataset without triggering a load.
func (c *Cache[D]) Snapshot() Snapshot[D] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[D]{
		Data:    c.data,
		Loading: c.loading,
		Err:     c.err,
	}
}
