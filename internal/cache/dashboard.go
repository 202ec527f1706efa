package cache

import (
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"homebudget/internal/aggregate"
)

// DashboardCache memoizes dashboards per ledger revision and month. A
// mutation bumps the revision, so stale entries are never hit and simply
// age out.
type DashboardCache struct {
	lru   *LRUCache[dashboardKey, aggregate.Dashboard]
	group singleflight.Group
}

func NewDashboardCache(maxSize int, ttl time.Duration) *DashboardCache {
	return &DashboardCache{lru: NewLRUCache[dashboardKey, aggregate.Dashboard](maxSize, ttl)}
}

type dashboardKey struct {
	revision uint64
	year     int
	month    time.Month
}

func (k dashboardKey) String() string {
	return fmt.Sprintf("%d:%d-%02d", k.revision, k.year, int(k.month))
}

// Get returns the cached dashboard or builds it once, even when several
// callers miss at the same time. The second result reports a cache hit.
func (d *DashboardCache) Get(revision uint64, year int, month time.Month, build func() aggregate.Dashboard) (aggregate.Dashboard, bool) {
	key := dashboardKey{revision: revision, year: year, month: month}
	if v, ok := d.lru.Get(key); ok {
		return v, true
	}
	v, _, _ := d.group.Do(key.String(), func() (any, error) {
		dash := build()
		d.lru.Set(key, dash)
		return dash, nil
	})
	return v.(aggregate.Dashboard), false
}

func (d *DashboardCache) CleanExpired() int { return d.lru.CleanExpired() }

func (d *DashboardCache) Size() int { return d.lru.Size() }
