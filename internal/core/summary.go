package core

import "github.com/shopspring/decimal"

// MonthStats is the income/expense summary of one calendar month.
type MonthStats struct {
	Income   Money `json:"income"`
	Facturas Money `json:"facturas"`
	Gastos   Money `json:"gastos"`
	Balance  Money `json:"balance"`
}

// Expenses returns facturas plus gastos.
func (s MonthStats) Expenses() Money {
	return s.Facturas.Add(s.Gastos)
}

// YearTotals sums the twelve months of a year.
type YearTotals struct {
	TotalIncome   Money `json:"totalIncome"`
	TotalExpenses Money `json:"totalExpenses"`
	TotalBalance  Money `json:"totalBalance"`
}

// CategoryShare is one slice of the monthly expense breakdown.
type CategoryShare struct {
	Category string          `json:"category"`
	Amount   Money           `json:"amount"`
	Percent  decimal.Decimal `json:"percent"`
}

// BudgetLine compares a budget target with what was spent in a month.
type BudgetLine struct {
	Kind      BudgetKind `json:"kind"`
	Category  string     `json:"category"`
	Target    Money      `json:"target"`
	Spent     Money      `json:"spent"`
	Remaining Money      `json:"remaining"`
	Exceeded  bool       `json:"exceeded"`
}
