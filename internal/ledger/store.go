// Package ledger owns the transaction list and the budget registry of one
// budgeting year. Every mutation validates its input, asks the Confirmer
// when the action is destructive or off-policy, persists the owning
// document and then notifies.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"homebudget/internal/core"
	applog "homebudget/internal/log"
	"homebudget/internal/storage"
)

const (
	DefaultTransactionsKey = "homeBudget_transactions_v3"
	DefaultBudgetsKey      = "homeBudget_budgets_v3"
)

var (
	// ErrDeclined means the user refused a confirmation. Nothing changed.
	ErrDeclined = errors.New("action declined")
	// ErrNoPriorMonth is returned when duplicating bills into January.
	ErrNoPriorMonth = errors.New("no prior month in the ledger year")
	// ErrNoBillsToDuplicate is returned when the prior month has no bills.
	ErrNoBillsToDuplicate = errors.New("no bills in the prior month")
	// ErrPersist wraps storage write failures. The in-memory change is kept.
	ErrPersist = errors.New("persist ledger")
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Year            int
	TransactionsKey string
	BudgetsKey      string
	Clock           func() time.Time
	NewID           func() core.ID
	Confirmer       Confirmer
	Notifier        Notifier
	Logger          *slog.Logger
}

// Store is safe for concurrent use. Confirmations are asked without holding
// the lock, so a slow prompt never blocks readers.
type Store struct {
	kv        storage.KV
	year      int
	txKey     string
	budgetKey string
	clock     func() time.Time
	newID     func() core.ID
	confirm   Confirmer
	notifier  Notifier
	logger    *slog.Logger

	mu       sync.Mutex
	txs      []core.Transaction
	budgets  core.Budgets
	revision uint64
}

// Snapshot is a point-in-time copy of the ledger.
type Snapshot struct {
	Year         int
	Transactions []core.Transaction
	Budgets      core.Budgets
	Revision     uint64
}

func newUUID() core.ID {
	return core.ID(uuid.NewString())
}

// Open loads both documents from kv. A document that cannot be decoded is
// replaced by an empty one and a warning is logged; only read failures of
// the backend itself are returned.
func Open(ctx context.Context, kv storage.KV, opts Options) (*Store, error) {
	s := &Store{
		kv:        kv,
		year:      opts.Year,
		txKey:     opts.TransactionsKey,
		budgetKey: opts.BudgetsKey,
		clock:     opts.Clock,
		newID:     opts.NewID,
		confirm:   opts.Confirmer,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
	}
	if s.year == 0 {
		s.year = core.DefaultYear
	}
	if s.txKey == "" {
		s.txKey = DefaultTransactionsKey
	}
	if s.budgetKey == "" {
		s.budgetKey = DefaultBudgetsKey
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = newUUID
	}
	if s.confirm == nil {
		s.confirm = Decline
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(applog.FieldComponent, applog.ComponentLedger)

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var txs []core.Transaction
	if _, err := storage.LoadJSON(ctx, s.kv, s.txKey, &txs); err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return fmt.Errorf("load transactions: %w", err)
		}
		s.logger.WarnContext(ctx, "Stored transactions are unreadable, starting empty",
			applog.FieldKey, s.txKey, applog.FieldError, err)
		txs = nil
	}
	txs = dropInvalidAmounts(ctx, s.logger, txs)

	budgets := core.NewBudgets()
	if _, err := storage.LoadJSON(ctx, s.kv, s.budgetKey, &budgets); err != nil {
		if !errors.Is(err, storage.ErrCorrupt) {
			return fmt.Errorf("load budgets: %w", err)
		}
		s.logger.WarnContext(ctx, "Stored budgets are unreadable, starting empty",
			applog.FieldKey, s.budgetKey, applog.FieldError, err)
		budgets = core.NewBudgets()
	}
	budgets.Normalize()

	s.txs = txs
	s.budgets = budgets

	s.logger.DebugContext(ctx, "Ledger loaded",
		applog.FieldOperation, applog.OpLoad,
		applog.FieldYear, s.year,
		applog.FieldCount, len(txs))
	return nil
}

// dropInvalidAmounts keeps only entries whose amount is positive. A null
// amount decodes to zero and would otherwise be summed as a real entry.
func dropInvalidAmounts(ctx context.Context, logger *slog.Logger, txs []core.Transaction) []core.Transaction {
	kept := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if err := tx.Amount.Validate(); err != nil {
			logger.WarnContext(ctx, "Dropping stored transaction with invalid amount",
				applog.FieldTransactionID, tx.ID, applog.FieldError, err)
			continue
		}
		kept = append(kept, tx)
	}
	return kept
}

// Year returns the budgeting year the store enforces.
func (s *Store) Year() int {
	return s.year
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := make([]core.Transaction, len(s.txs))
	copy(txs, s.txs)
	return Snapshot{
		Year:         s.year,
		Transactions: txs,
		Budgets:      s.budgets.Clone(),
		Revision:     s.revision,
	}
}

// Revision is bumped by every mutation, persisted or not.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Transaction looks up an entry by id.
func (s *Store) Transaction(id core.ID) (core.Transaction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.txs {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

// TransactionsFor lists the entries of one month in ledger order (newest
// first). An empty group matches every group.
func (s *Store) TransactionsFor(year int, month time.Month, group core.Group) []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []core.Transaction{}
	for _, t := range s.txs {
		if !t.Date.In(year, month) {
			continue
		}
		if group != "" && t.Group != group {
			continue
		}
		out = append(out, t)
	}
	return out
}

// sortLocked orders transactions by date, newest first, keeping the
// relative order of entries on the same day.
func (s *Store) sortLocked() {
	sort.SliceStable(s.txs, func(i, j int) bool {
		return s.txs[i].Date.After(s.txs[j].Date.Time)
	})
}

func (s *Store) persistTransactionsLocked(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, s.txKey, s.txs); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldKey, s.txKey,
			applog.FieldError, err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) persistBudgetsLocked(ctx context.Context) error {
	if err := storage.SaveJSON(ctx, s.kv, s.budgetKey, s.budgets); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist budgets",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldKey, s.budgetKey,
			applog.FieldError, err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// publish never fails the caller: the mutation is already stored.
func (s *Store) publish(ctx context.Context, ev Event) {
	ev.Year = s.year
	ev.At = s.clock()
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			applog.FieldOperation, applog.OpPublish,
			"kind", string(ev.Kind),
			applog.FieldRevision, ev.Revision,
			applog.FieldError, err)
	}
}
