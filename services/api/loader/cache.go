package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/02loveslollipop/solar-potential-dashboard/services/api/solar"
)

const loadKey = "table"

// Cache memoizes one load of a fixed source list. It is safe for concurrent
// use; the cached table is shared and never mutated. Concurrent callers
// share a single in-flight load.
type Cache struct {
	loader  *Loader
	sources []Source
	group   singleflight.Group

	mu         sync.Mutex
	table      *solar.Table
	loadedAt   time.Time
	generation uint64
}

// NewCache builds a cache. Nothing is fetched until Table is called.
func NewCache(l *Loader, sources []Source) *Cache {
	return &Cache{
		loader:  l,
		sources: append([]Source(nil), sources...),
	}
}

// Table returns the cached table, loading it on first use. A failed load is
// not remembered, so the next call tries again. A caller whose ctx ends while
// waiting on another caller's load returns early with solar.ErrDataAccess;
// the load itself runs under the context of the caller that started it.
func (c *Cache) Table(ctx context.Context) (*solar.Table, error) {
	if t, _ := c.current(); t != nil {
		return t, nil
	}

	ch := c.group.DoChan(loadKey, func() (any, error) {
		t, gen := c.current()
		if t != nil {
			return t, nil
		}
		t, err := c.loader.Load(ctx, c.sources)
		if err != nil {
			return nil, err
		}
		c.store(t, gen)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for load: %v", solar.ErrDataAccess, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*solar.Table), nil
	}
}

func (c *Cache) current() (*solar.Table, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table, c.generation
}

// store keeps t unless the cache was invalidated after the load started.
func (c *Cache) store(t *solar.Table, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.table = t
	c.loadedAt = time.Now().UTC()
}

// Invalidate drops the cached table. A load already in flight finishes for
// its waiters but is not kept.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.loadedAt = time.Time{}
	c.generation++
	c.mu.Unlock()
	c.group.Forget(loadKey)
}

// LoadedAt reports when the current table was loaded, or the zero time.
func (c *Cache) LoadedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadedAt
}

// Sources returns a copy of the configured sources.
func (c *Cache) Sources() []Source {
	return append([]Source(nil), c.sources...)
}
