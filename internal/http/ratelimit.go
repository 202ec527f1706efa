package http

import (
	"sync"
	"sync/atomic"
	"time"

	"homebudget/internal/cache"
)

const maxTrackedClients = 10000

// rateLimiter allows limit mutating requests per client IP per window.
// Client windows live in an LRU whose entries expire after ten idle
// windows; the server's cache manager sweeps them.
type rateLimiter struct {
	mu      sync.Mutex
	windows *cache.LRUCache[string, clientWindow]
	limit   int
	window  time.Duration
	now     func() time.Time
}

type clientWindow struct {
	start    time.Time
	requests int
}

var _ cache.Cleaner = (*rateLimiter)(nil)

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	windows := cache.NewLRUCache[string, clientWindow](maxTrackedClients, 10*window)
	windows.SetClock(now)
	return &rateLimiter{windows: windows, limit: limit, window: window, now: now}
}

// allow reports whether a request from clientIP fits in its current window.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows.Get(clientIP)
	if !ok || now.Sub(w.start) > rl.window {
		w = clientWindow{start: now}
	}
	w.requests++
	rl.windows.Set(clientIP, w)

	if w.requests > rl.limit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// CleanExpired forgets idle clients.
func (rl *rateLimiter) CleanExpired() int { return rl.windows.CleanExpired() }

// ActiveClients returns how many client IPs are tracked.
func (rl *rateLimiter) ActiveClients() int { return rl.windows.Size() }
