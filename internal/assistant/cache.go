// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/pubmed-assistant/internal/pubmed"
	"github.com/pdiddy/pubmed-assistant/pkg/types"
)

// FetchFunc retrieves paper content for a PMID.
type FetchFunc func(ctx context.Context, pmid string) pubmed.ContentResult

// Cache holds fetched paper content keyed by PMID for the lifetime of the
// service. Entries are never evicted. Absent results are not stored, so a
// later request retries the fetch.
type Cache struct {
	mu     sync.RWMutex
	papers map[string]*types.CachedPaper
	group  singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{papers: make(map[string]*types.CachedPaper)}
}

// Get returns the cached paper for pmid.
func (c *Cache) Get(pmid string) (*types.CachedPaper, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.papers[pmid]
	return p, ok
}

// Len returns the number of cached papers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.papers)
}

// GetOrFetch returns the cached paper for pmid, calling fetch on a miss.
// Concurrent misses for the same pmid share a single fetch, which runs
// detached from any one caller's cancellation. A caller whose ctx ends
// first gets an absent result carrying ctx.Err(); the fetch continues for
// the others. A found result is stored before it is returned; an absent
// one is returned as-is.
func (c *Cache) GetOrFetch(ctx context.Context, pmid string, fetch FetchFunc) pubmed.ContentResult {
	if p, ok := c.Get(pmid); ok {
		return pubmed.ContentResult{Paper: p}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(pmid, func() (any, error) {
		if p, ok := c.Get(pmid); ok {
			return pubmed.ContentResult{Paper: p}, nil
		}
		res := fetch(fetchCtx, pmid)
		if res.Found() {
			c.mu.Lock()
			c.papers[pmid] = res.Paper
			c.mu.Unlock()
		}
		return res, nil
	})

	select {
	case r := <-ch:
		return r.Val.(pubmed.ContentResult)
	case <-ctx.Done():
		return pubmed.ContentResult{Err: ctx.Err()}
	}
}
