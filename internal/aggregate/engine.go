// Package aggregate computes the derived views of the ledger: monthly
// stats, the expense breakdown by category, the yearly savings series and
// totals, and savings-goal progress.
//
// Every function here is pure: the result depends only on the transactions
// and the explicit year/month passed in.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

var hundred = decimal.NewFromInt(100)

// MonthStats sums income, bills and variable expenses dated in year/month.
func MonthStats(txs []core.Transaction, year int, month time.Month) core.MonthStats {
	var s core.MonthStats
	for _, tx := range txs {
		if !tx.Date.In(year, month) {
			continue
		}
		switch tx.Type {
		case core.Income:
			s.Income = s.Income.Add(tx.Amount)
		case core.Expense:
			switch tx.Group {
			case core.Factura:
				s.Facturas = s.Facturas.Add(tx.Amount)
			case core.Gasto:
				s.Gastos = s.Gastos.Add(tx.Amount)
			}
		}
	}
	s.Balance = s.Income.Sub(s.Facturas).Sub(s.Gastos)
	return s
}

// MonthExpensesByCategory totals the expenses of year/month per category.
// Categories whose total is zero are left out.
func MonthExpensesByCategory(txs []core.Transaction, year int, month time.Month) map[string]core.Money {
	out := map[string]core.Money{}
	for _, tx := range txs {
		if tx.Type != core.Expense || !tx.Date.In(year, month) || tx.Amount.IsZero() {
			continue
		}
		key := tx.Category
		if key == "" {
			key = core.DefaultCategory
		}
		out[key] = out[key].Add(tx.Amount)
	}
	for k, v := range out {
		if v.IsZero() {
			delete(out, k)
		}
	}
	return out
}

// YearSavings returns the balance of each month of year, January first.
func YearSavings(txs []core.Transaction, year int) [12]core.Money {
	var out [12]core.Money
	for m := time.January; m <= time.December; m++ {
		out[m-1] = MonthStats(txs, year, m).Balance
	}
	return out
}

// YearTotals sums income, expenses and balance over the twelve months of year.
func YearTotals(txs []core.Transaction, year int) core.YearTotals {
	var t core.YearTotals
	for m := time.January; m <= time.December; m++ {
		s := MonthStats(txs, year, m)
		t.TotalIncome = t.TotalIncome.Add(s.Income)
		t.TotalExpenses = t.TotalExpenses.Add(s.Expenses())
	}
	t.TotalBalance = t.TotalIncome.Sub(t.TotalExpenses)
	return t
}

// SavingsGoalProgress returns how much of goal the accumulated savings
// cover, as a percentage clamped to [0, 100]. ok is false when no goal is set.
func SavingsGoalProgress(goal, accumulated core.Money) (pct decimal.Decimal, ok bool) {
	if goal.Cents <= 0 {
		return decimal.Zero, false
	}
	pct = decimal.NewFromInt(accumulated.Cents).
		Mul(hundred).
		DivRound(decimal.NewFromInt(goal.Cents), 4)
	if pct.IsNegative() {
		return decimal.Zero, true
	}
	if pct.GreaterThan(hundred) {
		return hundred, true
	}
	return pct, true
}

// CategoryShares orders a category breakdown by amount, largest first, and
// attaches each entry's percentage of the total rounded to one decimal.
func CategoryShares(byCategory map[string]core.Money) []core.CategoryShare {
	var total int64
	out := make([]core.CategoryShare, 0, len(byCategory))
	for cat, amt := range byCategory {
		total += amt.Cents
		out = append(out, core.CategoryShare{Category: cat, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Category < out[j].Category
	})
	if total == 0 {
		return out
	}
	d := decimal.NewFromInt(total)
	for i := range out {
		out[i].Percent = decimal.NewFromInt(out[i].Amount.Cents).Mul(hundred).DivRound(d, 1)
	}
	return out
}
