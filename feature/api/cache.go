package api

import (
	"context"
	"sync"
	"time"

	"cosmos-isolation/feature/admin"

	"golang.org/x/sync/singleflight"
)

const statusKey = "status"

// statusCache holds the last status report for ttl. Concurrent misses share
// one build.
type statusCache struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.RWMutex
	report *admin.StatusReport
	built  time.Time

	sf singleflight.Group
}

func newStatusCache(ttl time.Duration) *statusCache {
	return &statusCache{ttl: ttl, now: time.Now}
}

func (c *statusCache) fresh() (*admin.StatusReport, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil || c.ttl == 0 || c.now().Sub(c.built) > c.ttl {
		return nil, false
	}
	return c.report, true
}

// Get returns the cached report or builds a new one. The build runs detached
// from ctx cancellation since other callers may be waiting on it.
func (c *statusCache) Get(ctx context.Context, build func(context.Context) (*admin.StatusReport, error)) (*admin.StatusReport, error) {
	if report, ok := c.fresh(); ok {
		return report, nil
	}

	v, err, _ := c.sf.Do(statusKey, func() (any, error) {
		if report, ok := c.fresh(); ok {
			return report, nil
		}
		report, err := build(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.report = report
		c.built = c.now()
		c.mu.Unlock()
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*admin.StatusReport), nil
}

// Invalidate drops the cached report.
func (c *statusCache) Invalidate() {
	c.mu.Lock()
	c.report = nil
	c.mu.Unlock()
}
