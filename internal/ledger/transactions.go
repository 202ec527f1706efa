package ledger

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"homebudget/internal/core"
	applog "homebudget/internal/log"
)

// Draft carries the raw values of the entry form. Category is the preset
// selection; a non-blank CustomCategory overrides it.
type Draft struct {
	Date           string
	Group          string
	Category       string
	CustomCategory string
	Description    string
	Amount         string
	Notes          string
}

// ResolveCategory picks the custom category when given, then the preset,
// then DefaultCategory.
func ResolveCategory(selection, custom string) string {
	if c := strings.TrimSpace(custom); c != "" {
		return c
	}
	if c := strings.TrimSpace(selection); c != "" {
		return c
	}
	return core.DefaultCategory
}

// AddTransaction validates d and records it. A date outside the ledger year
// needs confirmation; an empty date means today.
func (s *Store) AddTransaction(ctx context.Context, d Draft) (core.Transaction, error) {
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	group, err := core.ParseGroup(d.Group)
	if err != nil {
		return core.Transaction{}, err
	}

	now := s.clock()
	date := core.DateOf(now)
	if strings.TrimSpace(d.Date) != "" {
		if date, err = core.ParseDate(d.Date); err != nil {
			return core.Transaction{}, err
		}
	}

	if date.Year() != s.year {
		msg := fmt.Sprintf("La fecha seleccionada no es de %d. ¿Deseas guardarla igualmente?", s.year)
		if !s.confirm.Confirm(ctx, msg) {
			return core.Transaction{}, ErrDeclined
		}
	}

	description := strings.TrimSpace(d.Description)
	if description == "" {
		description = core.DefaultDescription
	}

	tx := core.Transaction{
		ID:          s.newID(),
		Date:        date,
		Type:        group.Type(),
		Group:       group,
		Category:    ResolveCategory(d.Category, d.CustomCategory),
		Description: description,
		Amount:      amount,
		Notes:       strings.TrimSpace(d.Notes),
		CreatedAt:   now,
	}

	s.mu.Lock()
	s.txs = append(s.txs, tx)
	s.sortLocked()
	s.revision++
	rev := s.revision
	err = s.persistTransactionsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return tx, err
	}

	s.logger.InfoContext(ctx, "Transaction added",
		applog.NewFields().
			WithOperation(applog.OpAdd).
			WithTransaction(string(tx.ID), string(tx.Group), tx.Category, tx.Amount.Cents).
			ToSlice()...)

	s.publish(ctx, Event{
		Kind:          EventTransactionAdded,
		Month:         tx.Date.Month(),
		TransactionID: tx.ID,
		Category:      tx.Category,
		Count:         1,
		Revision:      rev,
	})
	return tx, nil
}

// DeleteTransaction removes the entry with the given id after confirmation.
// An unknown id is not an error: it reports false and stores nothing.
func (s *Store) DeleteTransaction(ctx context.Context, id core.ID) (bool, error) {
	if !s.confirm.Confirm(ctx, "¿Estás seguro de que quieres eliminar esta transacción?") {
		return false, ErrDeclined
	}

	s.mu.Lock()
	idx := -1
	for i, t := range s.txs {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false, nil
	}
	removed := s.txs[idx]
	s.txs = slices.Delete(s.txs, idx, idx+1)
	s.revision++
	rev := s.revision
	err := s.persistTransactionsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return true, err
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, string(id))

	s.publish(ctx, Event{
		Kind:          EventTransactionDeleted,
		Month:         removed.Date.Month(),
		TransactionID: id,
		Category:      removed.Category,
		Count:         1,
		Revision:      rev,
	})
	return true, nil
}

// DuplicatePriorMonthBills copies every bill of the month before target
// into target, keeping the day of month. Days the target month lacks are
// moved back to its last day (31 January becomes 28 or 29 February).
func (s *Store) DuplicatePriorMonthBills(ctx context.Context, target time.Month) ([]core.Transaction, error) {
	if target < time.January || target > time.December {
		return nil, &core.ValidationError{Field: "month", Message: fmt.Sprintf("month %d out of range", int(target)), Err: core.ErrInvalidMonth}
	}
	if target == time.January {
		return nil, ErrNoPriorMonth
	}
	prior := target - 1

	s.mu.Lock()
	var sources []core.Transaction
	for _, t := range s.txs {
		if t.Group == core.Factura && t.Date.In(s.year, prior) {
			sources = append(sources, t)
		}
	}
	s.mu.Unlock()

	if len(sources) == 0 {
		return nil, ErrNoBillsToDuplicate
	}

	msg := fmt.Sprintf("¿Duplicar %d facturas de %s a %s?",
		len(sources), core.MonthName(prior), core.MonthName(target))
	if !s.confirm.Confirm(ctx, msg) {
		return nil, ErrDeclined
	}

	now := s.clock()
	copies := make([]core.Transaction, 0, len(sources))
	for _, src := range sources {
		c := src
		c.ID = s.newID()
		c.CreatedAt = now
		c.Date = core.ClampedDay(s.year, target, src.Date.Day())
		copies = append(copies, c)
	}

	s.mu.Lock()
	s.txs = append(s.txs, copies...)
	s.sortLocked()
	s.revision++
	rev := s.revision
	err := s.persistTransactionsLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return copies, err
	}

	s.logger.InfoContext(ctx, "Bills duplicated",
		applog.FieldOperation, applog.OpDuplicate,
		applog.FieldMonth, int(target),
		applog.FieldCount, len(copies))

	s.publish(ctx, Event{
		Kind:     EventBillsDuplicated,
		Month:    target,
		Count:    len(copies),
		Revision: rev,
	})
	return copies, nil
}
