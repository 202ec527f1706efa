package ledger

import (
	"context"
	"fmt"
	"strings"

	"homebudget/internal/core"
	applog "homebudget/internal/log"
)

// SetBudget stores a monthly target for a category. The custom category
// wins over the selection; one of them must be non-blank.
func (s *Store) SetBudget(ctx context.Context, kind, selection, custom, amount string) (core.Money, error) {
	k, err := core.ParseBudgetKind(kind)
	if err != nil {
		return core.Money{}, err
	}
	category := strings.TrimSpace(custom)
	if category == "" {
		category = strings.TrimSpace(selection)
	}
	if category == "" {
		return core.Money{}, &core.ValidationError{Field: "category", Message: "selecciona o escribe una categoría", Err: core.ErrEmptyCategory}
	}
	target, err := core.ParseAmount(amount)
	if err != nil {
		return core.Money{}, err
	}

	s.mu.Lock()
	s.budgets.Map(k)[category] = target
	s.revision++
	rev := s.revision
	err = s.persistBudgetsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return target, err
	}

	s.logger.InfoContext(ctx, "Budget set",
		applog.FieldOperation, applog.OpSetBudget,
		applog.FieldBudgetKind, string(k),
		applog.FieldCategory, category,
		applog.FieldAmountCents, target.Cents)

	s.publish(ctx, Event{Kind: EventBudgetSet, Category: category, Revision: rev})
	return target, nil
}

// DeleteBudget removes a category target after confirmation. Removing a
// category without a target is allowed and still persists.
func (s *Store) DeleteBudget(ctx context.Context, kind, category string) (bool, error) {
	k, err := core.ParseBudgetKind(kind)
	if err != nil {
		return false, err
	}
	category = strings.TrimSpace(category)
	if !s.confirm.Confirm(ctx, fmt.Sprintf("¿Eliminar el presupuesto de %s?", category)) {
		return false, ErrDeclined
	}

	s.mu.Lock()
	m := s.budgets.Map(k)
	_, existed := m[category]
	delete(m, category)
	s.revision++
	rev := s.revision
	err = s.persistBudgetsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return existed, err
	}

	s.logger.InfoContext(ctx, "Budget deleted",
		applog.FieldOperation, applog.OpDeleteBudget,
		applog.FieldBudgetKind, string(k),
		applog.FieldCategory, category)

	s.publish(ctx, Event{Kind: EventBudgetDeleted, Category: category, Revision: rev})
	return existed, nil
}

// SetSavingsGoal replaces the annual savings goal.
func (s *Store) SetSavingsGoal(ctx context.Context, amount string) (core.Money, error) {
	goal, err := core.ParseAmount(amount)
	if err != nil {
		return core.Money{}, err
	}

	s.mu.Lock()
	s.budgets.SavingsGoal = goal
	s.revision++
	rev := s.revision
	err = s.persistBudgetsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return goal, err
	}

	s.logger.InfoContext(ctx, "Savings goal set",
		applog.FieldOperation, applog.OpSetGoal,
		applog.FieldAmountCents, goal.Cents)

	s.publish(ctx, Event{Kind: EventSavingsGoalSet, Revision: rev})
	return goal, nil
}

// PromptSavingsGoal asks for a new goal, offering the current one, and
// stores the answer. Cancelling returns ErrDeclined.
func (s *Store) PromptSavingsGoal(ctx context.Context) (core.Money, error) {
	s.mu.Lock()
	current := s.budgets.SavingsGoal
	s.mu.Unlock()

	input, ok := s.confirm.PromptAmount(ctx, fmt.Sprintf("Objetivo de ahorro para %d (€):", s.year), current)
	if !ok {
		return core.Money{}, ErrDeclined
	}
	return s.SetSavingsGoal(ctx, input)
}
