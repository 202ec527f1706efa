package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMiddlewareRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf})

	var seen string
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if seen != "req-7" {
		t.Errorf("expected incoming id, got %q", seen)
	}
	if got := rr.Header().Get(RequestIDHeader); got != "req-7" {
		t.Errorf("expected id echoed, got %q", got)
	}
	if !strings.Contains(buf.String(), "request_id=req-7") {
		t.Errorf("request logger lacks the id: %q", buf.String())
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.HasPrefix(seen, "req_") || rr.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected generated id, got %q", seen)
	}
}

func TestFromContextFallback(t *testing.T) {
	l := FromContext(context.Background())
	if l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", l)
	}
	if RequestID(context.Background()) != "" {
		t.Error("expected no request id outside a request")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions/x", nil)
	sl.LogHTTPEnd(context.Background(), req, http.StatusNotFound, 3, "203.0.113.7")
	out := buf.String()
	for _, want := range []string{"level=WARN", "status_code=404", "client_ip=203.0.113.7", "method=DELETE"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTTP record missing %q: %s", want, out)
		}
	}

	buf.Reset()
	sl.LogError(context.Background(), "persist failed", errors.New("disk full"), ComponentLedger, OpPersist, nil)
	out = buf.String()
	for _, want := range []string{"level=ERROR", `error="disk full"`, "operation=persist", "component=ledger"} {
		if !strings.Contains(out, want) {
			t.Errorf("error record missing %q: %s", want, out)
		}
	}
}
