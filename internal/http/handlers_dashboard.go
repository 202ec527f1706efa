package http

import (
	"net/http"
	"strconv"

	"homebudget/internal/aggregate"
)

// handleDashboard renders the composite month view, cached per ledger
// revision and month.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r.URL.Query().Get("month"), s.defaultMonth())
	if err != nil {
		LedgerError(err).Write(w)
		return
	}

	snap := s.store.Snapshot()
	dash, hit := s.dashboards.Get(snap.Revision, snap.Year, month, func() aggregate.Dashboard {
		return aggregate.BuildDashboard(snap.Transactions, snap.Budgets, snap.Year, month)
	})

	NewResponse().
		Revision(snap.Revision).
		Header("X-Cache", strconv.FormatBool(hit)).
		JSON(dash).Write(w)
}
