// Package sheets mirrors a ledger year into a spreadsheet: one sheet with
// every movement and one with the monthly summary.
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homebudget/internal/aggregate"
	"homebudget/internal/core"
	"homebudget/internal/ledger"
)

const (
	MovementsSheet = "Movimientos"
	SummarySheet   = "Resumen"
)

// YearExporter writes a full year report, replacing what was exported before.
type YearExporter interface {
	ExportYear(ctx context.Context, r YearReport) error
}

// YearReport is everything an exporter writes for one year.
type YearReport struct {
	Year         int
	Revision     uint64
	Transactions []core.Transaction
	Months       [12]core.MonthStats
	Savings      [12]core.Money
	Totals       core.YearTotals
	Goal         aggregate.GoalProgress
}

// BuildYearReport derives a report from a ledger snapshot. Only entries of
// the snapshot year are listed, in ledger order.
func BuildYearReport(snap ledger.Snapshot) YearReport {
	r := YearReport{
		Year:     snap.Year,
		Revision: snap.Revision,
	}
	for _, t := range snap.Transactions {
		if t.Date.Year() == snap.Year {
			r.Transactions = append(r.Transactions, t)
		}
	}
	for i := range r.Months {
		r.Months[i] = aggregate.MonthStats(snap.Transactions, snap.Year, monthAt(i))
	}
	r.Savings = aggregate.YearSavings(snap.Transactions, snap.Year)
	r.Totals = aggregate.YearTotals(snap.Transactions, snap.Year)
	r.Goal = aggregate.Goal(snap.Budgets.SavingsGoal, r.Totals.TotalBalance)
	return r
}

// SheetName returns "<year> <base>" unless base already starts with a
// four-digit year.
func SheetName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

func monthAt(i int) time.Month {
	return time.Month(i + 1)
}
