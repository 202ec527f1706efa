// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"homebudget/internal/cache"
	"homebudget/internal/ledger"
	applog "homebudget/internal/log"
)

// ReadyCheck reports whether a dependency can serve requests.
type ReadyCheck func(ctx context.Context) error

// Server wraps http.Server with the ledger handlers and the background
// cleanup of its dashboard cache and rate limiter windows.
//
// The store must be opened with ledger.ContextConfirmer: confirmations travel
// with each request as confirm=true.
type Server struct {
	http.Server
	store       *ledger.Store
	logger      *applog.Logger
	structured  *applog.StructuredLogger
	rateLimiter *rateLimiter
	metrics     securityMetrics

	dashboards *cache.DashboardCache
	caches     *cache.Manager

	readyChecks map[string]ReadyCheck
	now         func() time.Time
	started     time.Time

	shutdownOnce sync.Once
}

// Option customizes a Server.
type Option func(*Server)

// WithReadyCheck adds a named dependency check to /readyz.
func WithReadyCheck(name string, check ReadyCheck) Option {
	return func(s *Server) { s.readyChecks[name] = check }
}

// WithClock replaces time.Now, used for the default month.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, store *ledger.Store, logger *applog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		store:       store,
		logger:      logger,
		structured:  applog.NewStructuredLogger(logger),
		rateLimiter: newRateLimiter(60, time.Minute, time.Now),
		dashboards:  cache.NewDashboardCache(100, 5*time.Minute),
		caches:      cache.NewManager(logger.Slog()),
		readyChecks: map[string]ReadyCheck{},
		now:         time.Now,
		started:     time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.caches.Register(s.dashboards)
	s.caches.Register(s.rateLimiter)
	s.caches.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /api/bills/duplicate", s.handleDuplicateBills)

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.HandleFunc("PUT /api/budgets/{kind}", s.handleSetBudget)
	mux.HandleFunc("DELETE /api/budgets/{kind}/{category}", s.handleDeleteBudget)
	mux.HandleFunc("PUT /api/savings-goal", s.handleSetSavingsGoal)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           applog.Middleware(logger)(s.withSecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops the cache cleanup and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limits mutations and
// logs every request. It runs inside applog.Middleware, which assigns the
// request id.
func (s *Server) withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		if rule, ok := detectSuspiciousRequest(r, &s.metrics); ok {
			logger.WarnContext(ctx, "Suspicious request",
				"rule", rule,
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP, &s.metrics) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate_limited", "Demasiadas peticiones. Inténtalo más tarde.").Write(w)
			s.structured.LogHTTPEnd(ctx, r, http.StatusTooManyRequests, time.Since(start).Milliseconds(), clientIP)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.structured.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
