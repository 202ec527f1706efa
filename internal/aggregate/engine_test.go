package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebudget/internal/core"
)

func tx(date string, group core.Group, category string, cents int64) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		ID:       core.ID(fmt.Sprintf("%s-%s-%d", date, group, cents)),
		Date:     d,
		Type:     group.Type(),
		Group:    group,
		Category: category,
		Amount:   core.Money{Cents: cents},
	}
}

func exampleLedger() []core.Transaction {
	return []core.Transaction{
		tx("2026-01-10", core.Ingreso, "Salario", 100000),
		tx("2026-01-05", core.Factura, "Alquiler", 30000),
		tx("2026-01-20", core.Gasto, "Compra", 5000),
	}
}

func TestMonthStatsExample(t *testing.T) {
	s := MonthStats(exampleLedger(), 2026, time.January)

	assert.Equal(t, int64(100000), s.Income.Cents)
	assert.Equal(t, int64(30000), s.Facturas.Cents)
	assert.Equal(t, int64(5000), s.Gastos.Cents)
	assert.Equal(t, int64(65000), s.Balance.Cents)
}

func TestMonthStatsScopesByYearAndMonth(t *testing.T) {
	txs := append(exampleLedger(),
		tx("2026-02-01", core.Gasto, "Compra", 700),
		tx("2025-01-15", core.Ingreso, "Salario", 99999),
		tx("2026-01-31", core.Gasto, "", 300),
	)

	s := MonthStats(txs, 2026, time.January)
	assert.Equal(t, int64(100000), s.Income.Cents)
	assert.Equal(t, int64(5300), s.Gastos.Cents)
	assert.Equal(t, s.Income.Cents-s.Facturas.Cents-s.Gastos.Cents, s.Balance.Cents)

	empty := MonthStats(txs, 2026, time.March)
	assert.Equal(t, core.MonthStats{}, empty)
}

func TestMonthExpensesByCategory(t *testing.T) {
	txs := append(exampleLedger(),
		tx("2026-01-22", core.Gasto, "Compra", 2500),
		tx("2026-01-23", core.Gasto, "", 1000),
		tx("2026-02-23", core.Gasto, "Ocio", 1000),
	)

	got := MonthExpensesByCategory(txs, 2026, time.January)

	require.Len(t, got, 3)
	assert.Equal(t, int64(30000), got["Alquiler"].Cents)
	assert.Equal(t, int64(7500), got["Compra"].Cents)
	assert.Equal(t, int64(1000), got[core.DefaultCategory].Cents)
	assert.NotContains(t, got, "Salario", "income must not appear in the expense breakdown")
}

func TestYearSavingsAndTotalsAgree(t *testing.T) {
	txs := append(exampleLedger(),
		tx("2026-03-01", core.Ingreso, "Salario", 120000),
		tx("2026-03-02", core.Factura, "Luz", 8000),
		tx("2026-12-31", core.Gasto, "Regalos", 40000),
		tx("2027-01-01", core.Gasto, "Regalos", 40000),
	)

	savings := YearSavings(txs, 2026)
	totals := YearTotals(txs, 2026)

	var sum int64
	for m, bal := range savings {
		assert.Equal(t, MonthStats(txs, 2026, time.Month(m+1)).Balance, bal)
		sum += bal.Cents
	}
	assert.Equal(t, sum, totals.TotalBalance.Cents)
	assert.Equal(t, int64(220000), totals.TotalIncome.Cents)
	assert.Equal(t, int64(83000), totals.TotalExpenses.Cents)
	assert.Equal(t, int64(65000), savings[0].Cents)
	assert.Equal(t, int64(-40000), savings[11].Cents)

	// Repeated calls give the same answer.
	assert.Equal(t, totals, YearTotals(txs, 2026))
}

func TestSavingsGoalProgress(t *testing.T) {
	_, ok := SavingsGoalProgress(core.Money{}, core.Money{Cents: 65000})
	assert.False(t, ok, "no goal means no percentage")

	pct, ok := SavingsGoalProgress(core.Money{Cents: 200000}, core.Money{Cents: 65000})
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("32.5").Equal(pct), "got %s", pct)

	pct, _ = SavingsGoalProgress(core.Money{Cents: 100}, core.Money{Cents: 500})
	assert.True(t, pct.Equal(decimal.NewFromInt(100)))

	pct, _ = SavingsGoalProgress(core.Money{Cents: 100}, core.Money{Cents: -500})
	assert.True(t, pct.IsZero())
}

func TestCategoryShares(t *testing.T) {
	shares := CategoryShares(map[string]core.Money{
		"Compra":   {Cents: 5000},
		"Alquiler": {Cents: 30000},
		"Ocio":     {Cents: 5000},
	})

	require.Len(t, shares, 3)
	assert.Equal(t, "Alquiler", shares[0].Category)
	assert.Equal(t, "Compra", shares[1].Category)
	assert.Equal(t, "Ocio", shares[2].Category)
	assert.Equal(t, "75", shares[0].Percent.String())
	assert.Equal(t, "12.5", shares[1].Percent.String())

	assert.Empty(t, CategoryShares(nil))
}
