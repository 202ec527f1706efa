package http

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"homebudget/internal/core"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady runs every registered dependency check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if s.store == nil {
		checks["ledger"] = "not_configured"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["ledger"] = map[string]any{"status": "ok", "revision": s.store.Revision()}
	}

	names := make([]string, 0, len(s.readyChecks))
	for name := range s.readyChecks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := s.readyChecks[name](ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	checks["cache"] = map[string]any{"dashboard_entries": s.dashboards.Size()}
	checks["rate_limiter"] = map[string]any{
		"active_clients":  s.rateLimiter.ActiveClients(),
		"rate_limit_hits": atomic.LoadInt64(&s.metrics.rateLimitHits),
		"suspicious":      atomic.LoadInt64(&s.metrics.suspiciousRequests),
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// defaultMonth is the month in view when a request names none.
func (s *Server) defaultMonth() time.Month {
	return core.NewSelection(s.now(), s.store.Year()).Month
}
