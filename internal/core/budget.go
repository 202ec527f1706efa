package core

import (
	"fmt"
	"sort"
	"strings"
)

const (
	FacturasKind BudgetKind = "facturas"
	GastosKind   BudgetKind = "gastos"
)

// BudgetKind selects one of the two budget maps.
type BudgetKind string

// ParseBudgetKind accepts "facturas" or "gastos", case-insensitively.
func ParseBudgetKind(s string) (BudgetKind, error) {
	k := BudgetKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case FacturasKind, GastosKind:
		return k, nil
	}
	return "", &ValidationError{Field: "kind", Message: fmt.Sprintf("unknown budget kind %q", s), Err: ErrInvalidKind}
}

// Group returns the transaction group a budget kind tracks.
func (k BudgetKind) Group() Group {
	if k == FacturasKind {
		return Factura
	}
	return Gasto
}

// Budgets is the budget registry: per-category targets for bills and
// variable expenses plus the annual savings goal (zero means no goal).
type Budgets struct {
	Facturas    map[string]Money `json:"facturas"`
	Gastos      map[string]Money `json:"gastos"`
	SavingsGoal Money            `json:"savingsGoal"`
}

// NewBudgets returns an empty registry.
func NewBudgets() Budgets {
	return Budgets{
		Facturas: map[string]Money{},
		Gastos:   map[string]Money{},
	}
}

// Normalize makes sure both maps exist so a partially written document
// still loads.
func (b *Budgets) Normalize() {
	if b.Facturas == nil {
		b.Facturas = map[string]Money{}
	}
	if b.Gastos == nil {
		b.Gastos = map[string]Money{}
	}
	if b.SavingsGoal.Cents < 0 {
		b.SavingsGoal = Money{}
	}
}

// Map returns the map for a kind.
func (b Budgets) Map(kind BudgetKind) map[string]Money {
	if kind == FacturasKind {
		return b.Facturas
	}
	return b.Gastos
}

// Clone returns a deep copy.
func (b Budgets) Clone() Budgets {
	out := Budgets{
		Facturas:    make(map[string]Money, len(b.Facturas)),
		Gastos:      make(map[string]Money, len(b.Gastos)),
		SavingsGoal: b.SavingsGoal,
	}
	for k, v := range b.Facturas {
		out.Facturas[k] = v
	}
	for k, v := range b.Gastos {
		out.Gastos[k] = v
	}
	return out
}

// Categories returns the budgeted categories of a kind in name order.
func (b Budgets) Categories(kind BudgetKind) []string {
	m := b.Map(kind)
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HasGoal reports whether a savings goal is set.
func (b Budgets) HasGoal() bool {
	return b.SavingsGoal.Cents > 0
}
