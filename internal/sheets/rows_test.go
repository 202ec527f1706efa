package sheets

import (
	"testing"
	"time"

	"homebudget/internal/core"
	"homebudget/internal/ledger"
)

func tx(id string, date core.Date, group core.Group, cents int64) core.Transaction {
	return core.Transaction{
		ID:       core.ID(id),
		Date:     date,
		Type:     group.Type(),
		Group:    group,
		Category: "Cat",
		Amount:   core.Money{Cents: cents},
	}
}

func sampleSnapshot() ledger.Snapshot {
	b := core.NewBudgets()
	b.SavingsGoal = core.Money{Cents: 200000}
	return ledger.Snapshot{
		Year:     2026,
		Revision: 9,
		Transactions: []core.Transaction{
			tx("4", core.NewDate(2026, time.April, 2), core.Gasto, 5000),
			tx("3", core.NewDate(2026, time.March, 10), core.Gasto, 5000),
			tx("2", core.NewDate(2026, time.March, 2), core.Factura, 30000),
			tx("1", core.NewDate(2026, time.March, 1), core.Ingreso, 100000),
			tx("0", core.NewDate(2025, time.December, 30), core.Ingreso, 999900),
		},
		Budgets: b,
	}
}

func TestBuildYearReport(t *testing.T) {
	r := BuildYearReport(sampleSnapshot())

	if r.Year != 2026 || r.Revision != 9 {
		t.Fatalf("unexpected header: %+v", r)
	}
	if len(r.Transactions) != 4 {
		t.Fatalf("expected 4 in-year transactions, got %d", len(r.Transactions))
	}
	march := r.Months[time.March-1]
	if march.Income.Cents != 100000 || march.Facturas.Cents != 30000 || march.Gastos.Cents != 5000 || march.Balance.Cents != 65000 {
		t.Errorf("unexpected March stats: %+v", march)
	}
	if r.Totals.TotalBalance.Cents != 60000 {
		t.Errorf("unexpected total balance: %d", r.Totals.TotalBalance.Cents)
	}
	if !r.Goal.Set || r.Goal.Percent.StringFixed(1) != "30.0" {
		t.Errorf("unexpected goal: %+v", r.Goal)
	}
}

func TestMovementRows(t *testing.T) {
	rows := MovementRows(BuildYearReport(sampleSnapshot()))

	if len(rows) != 5 {
		t.Fatalf("expected header plus 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Fecha" || rows[0][7] != "ID" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	first := rows[1]
	if first[0] != "2026-04-02" || first[2] != "gasto" || first[5] != 50.0 || first[7] != "4" {
		t.Errorf("unexpected first row: %v", first)
	}
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(BuildYearReport(sampleSnapshot()))

	// header + 12 months + TOTAL + goal
	if len(rows) != 15 {
		t.Fatalf("expected 15 rows, got %d", len(rows))
	}
	march := rows[3]
	if march[0] != "MARZO" || march[1] != 1000.0 || march[4] != 650.0 || march[5] != 650.0 {
		t.Errorf("unexpected March row: %v", march)
	}
	april := rows[4]
	if april[4] != -50.0 || april[5] != 600.0 {
		t.Errorf("unexpected April row: %v", april)
	}
	total := rows[13]
	if total[0] != "TOTAL" || total[2] != 300.0 || total[3] != 100.0 || total[4] != 600.0 {
		t.Errorf("unexpected TOTAL row: %v", total)
	}
	if rows[14][5] != "30.0%" {
		t.Errorf("unexpected goal row: %v", rows[14])
	}
}

func TestSummaryRowsWithoutGoal(t *testing.T) {
	snap := sampleSnapshot()
	snap.Budgets.SavingsGoal = core.Money{}

	if rows := SummaryRows(BuildYearReport(snap)); len(rows) != 14 {
		t.Fatalf("expected no goal row, got %d rows", len(rows))
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Movimientos", 2026, "2026 Movimientos"},
		{"  Resumen ", 2027, "2027 Resumen"},
		{"2025 Movimientos", 2026, "2025 Movimientos"},
		{"", 2026, ""},
	}
	for _, tt := range tests {
		if got := SheetName(tt.base, tt.year); got != tt.want {
			t.Errorf("SheetName(%q, %d) = %q, want %q", tt.base, tt.year, got, tt.want)
		}
	}
}
