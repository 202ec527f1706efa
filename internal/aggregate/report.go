package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

// Dashboard is everything a front-end shows for one selected month.
type Dashboard struct {
	Year        int                  `json:"year"`
	Month       time.Month           `json:"month"`
	MonthLabel  string               `json:"monthLabel"`
	Stats       core.MonthStats      `json:"stats"`
	Categories  []core.CategoryShare `json:"categories"`
	YearSavings [12]core.Money       `json:"yearSavings"`
	YearTotals  core.YearTotals      `json:"yearTotals"`
	Goal        GoalProgress         `json:"goal"`
	Budgets     []core.BudgetLine    `json:"budgets"`
}

// GoalProgress describes the savings goal card. Percent is only meaningful
// when Set is true.
type GoalProgress struct {
	Set         bool            `json:"set"`
	Goal        core.Money      `json:"goal"`
	Accumulated core.Money      `json:"accumulated"`
	Percent     decimal.Decimal `json:"percent"`
}

// Goal fills the savings goal card.
func Goal(goal, accumulated core.Money) GoalProgress {
	pct, ok := SavingsGoalProgress(goal, accumulated)
	return GoalProgress{
		Set:         ok,
		Goal:        goal,
		Accumulated: accumulated,
		Percent:     pct,
	}
}

// BudgetReport compares every budgeted category with what was spent on it
// in year/month. Bill budgets only count factura entries and expense
// budgets only count gasto entries.
func BudgetReport(txs []core.Transaction, budgets core.Budgets, year int, month time.Month) []core.BudgetLine {
	spent := map[core.Group]map[string]core.Money{
		core.Factura: {},
		core.Gasto:   {},
	}
	for _, tx := range txs {
		if tx.Type != core.Expense || !tx.Date.In(year, month) {
			continue
		}
		byCat, ok := spent[tx.Group]
		if !ok {
			continue
		}
		cat := tx.Category
		if cat == "" {
			cat = core.DefaultCategory
		}
		byCat[cat] = byCat[cat].Add(tx.Amount)
	}

	lines := []core.BudgetLine{}
	for _, kind := range []core.BudgetKind{core.FacturasKind, core.GastosKind} {
		targets := budgets.Map(kind)
		for _, cat := range budgets.Categories(kind) {
			target := targets[cat]
			s := spent[kind.Group()][cat]
			lines = append(lines, core.BudgetLine{
				Kind:      kind,
				Category:  cat,
				Target:    target,
				Spent:     s,
				Remaining: target.Sub(s),
				Exceeded:  s.Cents > target.Cents,
			})
		}
	}
	return lines
}

// BuildDashboard assembles the dashboard for year/month. The accumulated
// savings used for the goal card are the year's total balance.
func BuildDashboard(txs []core.Transaction, budgets core.Budgets, year int, month time.Month) Dashboard {
	totals := YearTotals(txs, year)
	return Dashboard{
		Year:        year,
		Month:       month,
		MonthLabel:  core.MonthName(month),
		Stats:       MonthStats(txs, year, month),
		Categories:  CategoryShares(MonthExpensesByCategory(txs, year, month)),
		YearSavings: YearSavings(txs, year),
		YearTotals:  totals,
		Goal:        Goal(budgets.SavingsGoal, totals.TotalBalance),
		Budgets:     BudgetReport(txs, budgets, year, month),
	}
}
