package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"homebudget/internal/ledger"
	"homebudget/internal/storage"
)

var fixedNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

type failingKV struct{ *storage.Memory }

func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disk full") }

func newTestServer(t *testing.T, kv storage.KV) *Server {
	t.Helper()
	store, err := ledger.Open(context.Background(), kv, ledger.Options{
		Year:      2026,
		Clock:     func() time.Time { return fixedNow },
		Confirmer: ledger.ContextConfirmer{},
	})
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	srv := NewServer(":0", store, nil, WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}
}

func TestReadyFailingCheck(t *testing.T) {
	store, err := ledger.Open(context.Background(), storage.NewMemory(), ledger.Options{Year: 2026})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	srv := NewServer(":0", store, nil, WithReadyCheck("amqp", func(context.Context) error {
		return errors.New("connection refused")
	}))
	defer srv.Shutdown(context.Background())

	rr := do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	checks := decode(t, rr)["checks"].(map[string]any)
	if checks["amqp"] != "failed: connection refused" {
		t.Errorf("unexpected amqp check: %v", checks["amqp"])
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	for header, want := range map[string]string{
		"X-Request-ID":           "req-42",
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rr.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestAddAndListTransactions(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"date":"2026-03-02","group":"factura","category":"Luz","description":"Recibo","amount":45.5}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode(t, rr)
	if created["type"] != "expense" || created["amount"] != 45.5 || created["category"] != "Luz" {
		t.Errorf("unexpected transaction: %v", created)
	}
	if rr.Header().Get("Location") == "" || rr.Header().Get("X-Ledger-Revision") != "1" {
		t.Errorf("unexpected headers: %v", rr.Header())
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?month=3&group=factura", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status=%d", rr.Code)
	}
	list := decode(t, rr)
	if list["monthLabel"] != "MARZO 2026" {
		t.Errorf("unexpected label: %v", list["monthLabel"])
	}
	if txs := list["transactions"].([]any); len(txs) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txs))
	}

	rr = do(t, srv, http.MethodGet, "/api/transactions?month=4", "")
	if txs := decode(t, rr)["transactions"].([]any); len(txs) != 0 {
		t.Errorf("expected empty April, got %d", len(txs))
	}
}

func TestAddTransactionForm(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader("group=gasto&customCategory=Cine&amount=12%2C50"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	created := decode(t, rr)
	if created["date"] != "2026-03-15" || created["category"] != "Cine" || created["amount"] != 12.5 {
		t.Errorf("unexpected transaction: %v", created)
	}
}

func TestAddTransactionErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
	}{
		{"invalid amount", `{"group":"gasto","amount":"abc"}`, http.StatusBadRequest, "amount"},
		{"zero amount", `{"group":"gasto","amount":0}`, http.StatusBadRequest, "amount"},
		{"amount beyond int64 cents", `{"group":"gasto","amount":"184467440737095516.17"}`, http.StatusBadRequest, "amount"},
		{"huge exponent amount", `{"group":"gasto","amount":"1e50000000"}`, http.StatusBadRequest, "amount"},
		{"unknown group", `{"group":"ahorro","amount":10}`, http.StatusBadRequest, "group"},
		{"bad date", `{"group":"gasto","amount":10,"date":"2026-13-40"}`, http.StatusBadRequest, "date"},
		{"off-year without confirm", `{"group":"gasto","amount":10,"date":"2025-12-31"}`, http.StatusConflict, ""},
		{"malformed body", `{"group":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, storage.NewMemory())
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rr.Code, rr.Body.String())
			}
			if tt.wantField != "" {
				if got := decode(t, rr)["field"]; got != tt.wantField {
					t.Errorf("expected field %q, got %v", tt.wantField, got)
				}
			}
			if srv.store.Revision() != 0 {
				t.Errorf("failed add must not mutate, revision %d", srv.store.Revision())
			}
		})
	}
}

func TestAddOffYearConfirmed(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	rr := do(t, srv, http.MethodPost, "/api/transactions",
		`{"group":"gasto","amount":10,"date":"2025-12-31","confirm":true}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())
	rr := do(t, srv, http.MethodPost, "/api/transactions", `{"group":"gasto","amount":10}`)
	id := decode(t, rr)["id"].(string)

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+id, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirm, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+id+"?confirm=true", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/api/transactions/"+id+"?confirm=true", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for missing id, got %d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/api/transactions/never-existed?confirm=true", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for unknown id, got %d", rr.Code)
	}
}

func TestDuplicateBills(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	rr := do(t, srv, http.MethodPost, "/api/bills/duplicate?month=1&confirm=true", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("January: expected 422, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/bills/duplicate?month=4&confirm=true", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("no bills: expected 422, got %d", rr.Code)
	}
	if msg := decode(t, rr)["message"]; msg != "No hay facturas en el mes anterior para duplicar." {
		t.Errorf("unexpected notice %v", msg)
	}

	do(t, srv, http.MethodPost, "/api/transactions", `{"group":"factura","category":"Luz","amount":45,"date":"2026-03-31"}`)

	rr = do(t, srv, http.MethodPost, "/api/bills/duplicate?month=4", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirm, got %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/api/bills/duplicate?month=4&confirm=true", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	if body["count"] != 1.0 {
		t.Fatalf("expected 1 copy, got %v", body["count"])
	}
	copied := body["transactions"].([]any)[0].(map[string]any)
	if copied["date"] != "2026-04-30" {
		t.Errorf("expected clamped date, got %v", copied["date"])
	}

	rr = do(t, srv, http.MethodPost, "/api/bills/duplicate?month=13&confirm=true", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("month 13: expected 400, got %d", rr.Code)
	}
}

func TestBudgets(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())

	rr := do(t, srv, http.MethodPut, "/api/budgets/gastos", `{"category":"Super","amount":"200"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set budget: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPut, "/api/budgets/facturas", `{"category":"Luz","customCategory":"Agua","amount":30}`)
	if got := decode(t, rr)["category"]; got != "Agua" {
		t.Errorf("custom category should win, got %v", got)
	}

	rr = do(t, srv, http.MethodGet, "/api/budgets", "")
	body := decode(t, rr)
	if body["gastos"].(map[string]any)["Super"] != 200.0 {
		t.Errorf("unexpected gastos: %v", body["gastos"])
	}
	if body["facturas"].(map[string]any)["Agua"] != 30.0 {
		t.Errorf("unexpected facturas: %v", body["facturas"])
	}

	for _, tc := range []struct {
		path, body string
	}{
		{"/api/budgets/ahorro", `{"category":"X","amount":10}`},
		{"/api/budgets/gastos", `{"amount":10}`},
		{"/api/budgets/gastos", `{"category":"X","amount":-1}`},
	} {
		if rr := do(t, srv, http.MethodPut, tc.path, tc.body); rr.Code != http.StatusBadRequest {
			t.Errorf("PUT %s %s: expected 400, got %d", tc.path, tc.body, rr.Code)
		}
	}

	if rr := do(t, srv, http.MethodDelete, "/api/budgets/gastos/Super", ""); rr.Code != http.StatusConflict {
		t.Fatalf("delete without confirm: expected 409, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/budgets/gastos/Super?confirm=true", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/budgets/gastos/Super?confirm=true", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete missing: expected 204, got %d", rr.Code)
	}
}

func TestSavingsGoal(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())
	do(t, srv, http.MethodPost, "/api/transactions", `{"group":"ingreso","amount":1300,"date":"2026-03-01"}`)

	rr := do(t, srv, http.MethodPut, "/api/savings-goal", `{"amount":"4000"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set goal: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/budgets", "")
	goal := decode(t, rr)["savingsGoal"].(map[string]any)
	if goal["set"] != true || goal["percent"] != "32.5" {
		t.Errorf("unexpected goal progress: %v", goal)
	}

	if rr := do(t, srv, http.MethodPut, "/api/savings-goal", `{}`); rr.Code != http.StatusBadRequest {
		t.Errorf("missing amount: expected 400, got %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodPut, "/api/savings-goal", `{"amount":"0"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("zero amount: expected 400, got %d", rr.Code)
	}
}

func TestDashboardCaching(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())
	do(t, srv, http.MethodPost, "/api/transactions", `{"group":"ingreso","amount":1000,"date":"2026-03-01"}`)
	do(t, srv, http.MethodPost, "/api/transactions", `{"group":"factura","amount":300,"date":"2026-03-02"}`)
	do(t, srv, http.MethodPost, "/api/transactions", `{"group":"gasto","amount":50,"date":"2026-03-03"}`)

	rr := do(t, srv, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard: %d", rr.Code)
	}
	if rr.Header().Get("X-Cache") != "false" {
		t.Errorf("first dashboard should miss")
	}
	dash := decode(t, rr)
	stats := dash["stats"].(map[string]any)
	if dash["month"] != 3.0 || stats["balance"] != 650.0 {
		t.Errorf("unexpected dashboard: month=%v stats=%v", dash["month"], stats)
	}

	rr = do(t, srv, http.MethodGet, "/api/dashboard?month=3", "")
	if rr.Header().Get("X-Cache") != "true" {
		t.Errorf("second dashboard should hit")
	}

	do(t, srv, http.MethodPost, "/api/transactions", `{"group":"gasto","amount":5,"date":"2026-03-04"}`)
	rr = do(t, srv, http.MethodGet, "/api/dashboard?month=3", "")
	if rr.Header().Get("X-Cache") != "false" {
		t.Errorf("dashboard after mutation should miss")
	}

	if rr := do(t, srv, http.MethodGet, "/api/dashboard?month=0", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("month 0: expected 400, got %d", rr.Code)
	}
}

func TestPersistFailure(t *testing.T) {
	srv := newTestServer(t, failingKV{storage.NewMemory()})

	rr := do(t, srv, http.MethodPost, "/api/transactions", `{"group":"gasto","amount":10}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if got := decode(t, rr)["error"]; got != "persist_failed" {
		t.Errorf("unexpected error code %v", got)
	}
	if len(srv.store.Snapshot().Transactions) != 1 {
		t.Error("mutation should survive a persist failure")
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())
	srv.rateLimiter.limit = 2

	for i := 0; i < 2; i++ {
		if rr := do(t, srv, http.MethodPost, "/api/transactions", `{"group":"gasto","amount":1}`); rr.Code != http.StatusCreated {
			t.Fatalf("request %d: %d", i, rr.Code)
		}
	}
	rr := do(t, srv, http.MethodPost, "/api/transactions", `{"group":"gasto","amount":1}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Error("missing Retry-After")
	}

	if rr := do(t, srv, http.MethodGet, "/api/transactions", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, storage.NewMemory())
	rr := do(t, srv, http.MethodPatch, "/api/transactions", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
