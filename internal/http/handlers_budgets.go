package http

import (
	"net/http"

	"homebudget/internal/aggregate"
	"homebudget/internal/core"
	"homebudget/internal/ledger"
	applog "homebudget/internal/log"
)

type budgetsResponse struct {
	Year        int                    `json:"year"`
	Facturas    map[string]core.Money  `json:"facturas"`
	Gastos      map[string]core.Money  `json:"gastos"`
	SavingsGoal aggregate.GoalProgress `json:"savingsGoal"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	totals := aggregate.YearTotals(snap.Transactions, snap.Year)

	NewResponse().Revision(snap.Revision).JSON(budgetsResponse{
		Year:        snap.Year,
		Facturas:    snap.Budgets.Facturas,
		Gastos:      snap.Budgets.Gastos,
		SavingsGoal: aggregate.Goal(snap.Budgets.SavingsGoal, totals.TotalBalance),
	}).Write(w)
}

// handleSetBudget upserts one budget. Body: category, customCategory, amount.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de petición no válido.").Write(w)
		return
	}

	kind := r.PathValue("kind")
	amount, err := s.store.SetBudget(r.Context(), kind, p.Get("category"), p.Get("customCategory"), p.Get("amount"))
	if err != nil {
		s.logLedgerError(r, "Set budget failed", applog.OpSetBudget, err)
		LedgerError(err).Write(w)
		return
	}

	NewResponse().Revision(s.store.Revision()).JSON(map[string]any{
		"kind":     kind,
		"category": ledger.ResolveCategory(p.Get("category"), p.Get("customCategory")),
		"amount":   amount,
	}).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ctx := ledger.WithDecision(r.Context(), parseConfirm(r.URL.Query()))
	if _, err := s.store.DeleteBudget(ctx, r.PathValue("kind"), r.PathValue("category")); err != nil {
		s.logLedgerError(r, "Delete budget failed", applog.OpDeleteBudget, err)
		LedgerError(err).Write(w)
		return
	}
	NewResponse().Status(http.StatusNoContent).Revision(s.store.Revision()).Write(w)
}

// handleSetSavingsGoal stores the annual goal. Body: amount.
func (s *Server) handleSetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("Formato de petición no válido.").Write(w)
		return
	}
	if !p.Has("amount") {
		LedgerError(&core.ValidationError{Field: "amount", Message: "amount is required", Err: core.ErrInvalidAmount}).Write(w)
		return
	}

	ctx := ledger.WithAmount(r.Context(), p.Get("amount"))
	goal, err := s.store.PromptSavingsGoal(ctx)
	if err != nil {
		s.logLedgerError(r, "Set savings goal failed", applog.OpSetGoal, err)
		LedgerError(err).Write(w)
		return
	}

	NewResponse().Revision(s.store.Revision()).JSON(map[string]any{"savingsGoal": goal}).Write(w)
}
