package ledger

import (
	"context"
	"time"

	"homebudget/internal/core"
)

// Confirmer asks the user before destructive or off-policy actions and
// collects the savings goal. Implementations decide how the question is
// shown: a terminal prompt, a request flag, a scripted fake.
type Confirmer interface {
	// Confirm returns true to proceed.
	Confirm(ctx context.Context, message string) bool
	// PromptAmount returns the raw text entered, or false when cancelled.
	PromptAmount(ctx context.Context, message string, current core.Money) (string, bool)
}

// Scripted is a Confirmer built from plain functions. Nil functions decline.
type Scripted struct {
	ConfirmFunc func(message string) bool
	PromptFunc  func(message string, current core.Money) (string, bool)
}

func (s Scripted) Confirm(_ context.Context, message string) bool {
	if s.ConfirmFunc == nil {
		return false
	}
	return s.ConfirmFunc(message)
}

func (s Scripted) PromptAmount(_ context.Context, message string, current core.Money) (string, bool) {
	if s.PromptFunc == nil {
		return "", false
	}
	return s.PromptFunc(message, current)
}

var (
	// AlwaysConfirm accepts every confirmation and cancels every prompt.
	AlwaysConfirm Confirmer = Scripted{ConfirmFunc: func(string) bool { return true }}
	// Decline refuses everything.
	Decline Confirmer = Scripted{}
)

type decisionKey struct{}
type amountKey struct{}

// WithDecision attaches a confirmation answer to ctx for ContextConfirmer.
func WithDecision(ctx context.Context, ok bool) context.Context {
	return context.WithValue(ctx, decisionKey{}, ok)
}

// WithAmount attaches the answer to an amount prompt to ctx.
func WithAmount(ctx context.Context, amount string) context.Context {
	return context.WithValue(ctx, amountKey{}, amount)
}

// ContextConfirmer answers from values carried in the context, which is how
// request-driven front-ends pass the user's decision along with the action.
// A missing decision declines.
type ContextConfirmer struct{}

func (ContextConfirmer) Confirm(ctx context.Context, _ string) bool {
	ok, _ := ctx.Value(decisionKey{}).(bool)
	return ok
}

func (ContextConfirmer) PromptAmount(ctx context.Context, _ string, _ core.Money) (string, bool) {
	s, ok := ctx.Value(amountKey{}).(string)
	return s, ok
}

// EventKind names a ledger mutation.
type EventKind string

const (
	EventTransactionAdded   EventKind = "transaction.added"
	EventTransactionDeleted EventKind = "transaction.deleted"
	EventBillsDuplicated    EventKind = "bills.duplicated"
	EventBudgetSet          EventKind = "budget.set"
	EventBudgetDeleted      EventKind = "budget.deleted"
	EventSavingsGoalSet     EventKind = "savings_goal.set"
)

// Event describes a persisted mutation. Month is zero for budget events.
type Event struct {
	Kind          EventKind
	Year          int
	Month         time.Month
	TransactionID core.ID
	Category      string
	Count         int
	Revision      uint64
	At            time.Time
}

// Notifier receives an Event after every persisted mutation.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev Event) error

func (f NotifierFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, Event) error { return nil }
