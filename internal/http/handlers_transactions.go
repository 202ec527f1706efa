package http

import (
	"net/http"
	"strings"
	"time"

	"homebudget/internal/core"
	"homebudget/internal/ledger"
	applog "homebudget/internal/log"
)

type transactionsResponse struct {
	Year         int                `json:"year"`
	Month        time.Month         `json:"month"`
	MonthLabel   string             `json:"monthLabel"`
	Group        core.Group         `json:"group,omitempty"`
	Transactions []core.Transaction `json:"transactions"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, err := parseMonth(q.Get("month"), s.defaultMonth())
	if err != nil {
		LedgerError(err).Write(w)
		return
	}

	var group core.Group
	if raw := strings.TrimSpace(q.Get("group")); raw != "" {
		if group, err = core.ParseGroup(raw); err != nil {
			LedgerError(err).Write(w)
			return
		}
	}

	year := s.store.Year()
	NewResponse().Revision(s.store.Revision()).JSON(transactionsResponse{
		Year:         year,
		Month:        month,
		MonthLabel:   core.Selection{Year: year, Month: month}.Label(),
		Group:        group,
		Transactions: s.store.TransactionsFor(year, month, group),
	}).Write(w)
}

// handleAddTransaction accepts the entry form as JSON or form data. A
// "confirm" field accepts an off-year date.
func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de petición no válido.").Write(w)
		return
	}

	draft := ledger.Draft{
		Date:           p.Get("date"),
		Group:          p.Get("group"),
		Category:       p.Get("category"),
		CustomCategory: p.Get("customCategory"),
		Description:    p.Get("description"),
		Amount:         p.Get("amount"),
		Notes:          p.Get("notes"),
	}

	ctx := ledger.WithDecision(r.Context(), p.Bool("confirm") || parseConfirm(r.URL.Query()))
	tx, err := s.store.AddTransaction(ctx, draft)
	if err != nil {
		s.logLedgerError(r, "Add transaction failed", applog.OpAdd, err)
		LedgerError(err).Write(w)
		return
	}

	NewResponse().Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+string(tx.ID)).
		Revision(s.store.Revision()).
		JSON(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := core.ID(sanitizeInput(r.PathValue("id")))
	if id == "" {
		BadRequestError("Falta el identificador.").Write(w)
		return
	}

	ctx := ledger.WithDecision(r.Context(), parseConfirm(r.URL.Query()))
	// An unknown id is a no-op and answers like a successful delete.
	if _, err := s.store.DeleteTransaction(ctx, id); err != nil {
		s.logLedgerError(r, "Delete transaction failed", applog.OpDelete, err)
		LedgerError(err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Revision(s.store.Revision()).Write(w)
}

func (s *Server) handleDuplicateBills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month, err := parseMonth(q.Get("month"), s.defaultMonth())
	if err != nil {
		LedgerError(err).Write(w)
		return
	}

	ctx := ledger.WithDecision(r.Context(), parseConfirm(q))
	copies, err := s.store.DuplicatePriorMonthBills(ctx, month)
	if err != nil {
		s.logLedgerError(r, "Duplicate bills failed", applog.OpDuplicate, err)
		LedgerError(err).Write(w)
		return
	}

	NewResponse().Status(http.StatusCreated).Revision(s.store.Revision()).JSON(map[string]any{
		"month":        month,
		"count":        len(copies),
		"transactions": copies,
	}).Write(w)
}

// logLedgerError logs failures the user cannot fix by changing the input.
// Validation errors, declines and notices are logged at debug level.
func (s *Server) logLedgerError(r *http.Request, msg, op string, err error) {
	if LedgerError(err).statusCode < http.StatusInternalServerError {
		applog.FromContext(r.Context()).Slog().DebugContext(r.Context(), msg,
			applog.FieldOperation, op, applog.FieldError, err)
		return
	}
	s.structured.LogError(r.Context(), msg, err, applog.ComponentHTTP, op, nil)
}
