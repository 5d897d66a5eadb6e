// Package bookmarks resolves whether saved tab URLs are bookmarked in the
// browser. Lookups go through a batched Checker; results are cached for
// the life of the view (a false is as final as a true — nothing expires or
// re-checks within a session). When the checker is unavailable the cache
// degrades to "not bookmarked" for everything instead of surfacing an
// error, so bookmark badges disappear rather than block the view.
package bookmarks

import (
	"context"
	"sync"

	"github.com/lotas/tabclue/internal/applog"
)

// Checker performs one batched bookmark lookup against the browser.
type Checker interface {
	// Lookup returns URL -> bookmarked for the requested URLs. URLs
	// missing from the result are treated as not bookmarked.
	Lookup(ctx context.Context, urls []string) (map[string]bool, error)
}

// NoopChecker is the fallback when no browser is connected: every URL
// reports not bookmarked, without error. It is selected once at startup.
type NoopChecker struct{}

func (NoopChecker) Lookup(_ context.Context, urls []string) (map[string]bool, error) {
	out := make(map[string]bool, len(urls))
	for _, u := range urls {
		out[u] = false
	}
	return out, nil
}

// Cache is the view-scoped bookmark status cache.
type Cache struct {
	checker Checker

	mu     sync.Mutex
	status map[string]bool
}

// NewCache wraps a checker. Pass NoopChecker{} when no live browser is
// available.
func NewCache(checker Checker) *Cache {
	return &Cache{
		checker: checker,
		status:  make(map[string]bool),
	}
}

// Status returns bookmark status for the requested URLs, looking up only
// the ones not already cached in a single batched call. Callers bound the
// request to the currently visible tabs (display limit), never the whole
// collection. A failing checker degrades to false for the uncached URLs.
func (c *Cache) Status(ctx context.Context, urls []string) map[string]bool {
	out := make(map[string]bool, len(urls))

	c.mu.Lock()
	var missing []string
	for _, u := range urls {
		if v, ok := c.status[u]; ok {
			out[u] = v
			continue
		}
		missing = append(missing, u)
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return out
	}

	looked, err := c.checker.Lookup(ctx, missing)
	if err != nil {
		applog.Warn("bookmarks.unavailable", "urls", len(missing))
		looked = nil
	}

	c.mu.Lock()
	for _, u := range missing {
		v := looked[u]
		c.status[u] = v
		out[u] = v
	}
	c.mu.Unlock()

	return out
}

// Reset drops all cached results. The cache is session-scoped and never
// re-checks a URL on its own; Reset gives a new session a clean slate.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.status = make(map[string]bool)
	c.mu.Unlock()
}
