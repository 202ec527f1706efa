package sheets

import (
	"homebudget/internal/core"
)

var (
	movementsHeader = []any{"Fecha", "Tipo", "Grupo", "Categoría", "Descripción", "Importe", "Notas", "ID"}
	summaryHeader   = []any{"Mes", "Ingresos", "Facturas", "Gastos", "Balance", "Ahorro acumulado"}
)

// euros renders an amount as a sheet number.
func euros(m core.Money) float64 {
	return m.Euros().InexactFloat64()
}

// MovementRows returns the header plus one row per transaction.
func MovementRows(r YearReport) [][]any {
	rows := make([][]any, 0, len(r.Transactions)+1)
	rows = append(rows, movementsHeader)
	for _, t := range r.Transactions {
		rows = append(rows, []any{
			t.Date.String(),
			string(t.Type),
			string(t.Group),
			t.Category,
			t.Description,
			euros(t.Amount),
			t.Notes,
			string(t.ID),
		})
	}
	return rows
}

// SummaryRows returns the header, one row per month with the running
// savings, a TOTAL row and, when a goal is set, the goal row.
func SummaryRows(r YearReport) [][]any {
	rows := make([][]any, 0, 15)
	rows = append(rows, summaryHeader)

	var running core.Money
	var facturas, gastos core.Money
	for i, m := range r.Months {
		running = running.Add(r.Savings[i])
		facturas = facturas.Add(m.Facturas)
		gastos = gastos.Add(m.Gastos)
		rows = append(rows, []any{
			core.MonthName(monthAt(i)),
			euros(m.Income),
			euros(m.Facturas),
			euros(m.Gastos),
			euros(m.Balance),
			euros(running),
		})
	}

	rows = append(rows, []any{
		"TOTAL",
		euros(r.Totals.TotalIncome),
		euros(facturas),
		euros(gastos),
		euros(r.Totals.TotalBalance),
		euros(running),
	})

	if r.Goal.Set {
		rows = append(rows, []any{
			"Objetivo de ahorro",
			euros(r.Goal.Goal),
			"",
			"",
			"",
			r.Goal.Percent.StringFixed(1) + "%",
		})
	}
	return rows
}
