package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"homebudget/internal/core"
	"homebudget/internal/ledger"
)

// LedgerEvent is the wire form of a ledger mutation. It only says what
// changed; consumers reload the ledger documents for the data itself.
type LedgerEvent struct {
	Kind          string    `json:"kind"`
	Year          int       `json:"year"`
	Month         int       `json:"month,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
	Category      string    `json:"category,omitempty"`
	Count         int       `json:"count,omitempty"`
	Revision      uint64    `json:"revision"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent converts a ledger event for publishing.
func NewLedgerEvent(ev ledger.Event) *LedgerEvent {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerEvent{
		Kind:          string(ev.Kind),
		Year:          ev.Year,
		Month:         int(ev.Month),
		TransactionID: string(ev.TransactionID),
		Category:      ev.Category,
		Count:         ev.Count,
		Revision:      ev.Revision,
		Timestamp:     ts,
	}
}

// Event converts the message back into a ledger event.
func (m *LedgerEvent) Event() ledger.Event {
	return ledger.Event{
		Kind:          ledger.EventKind(m.Kind),
		Year:          m.Year,
		Month:         time.Month(m.Month),
		TransactionID: core.ID(m.TransactionID),
		Category:      m.Category,
		Count:         m.Count,
		Revision:      m.Revision,
		At:            m.Timestamp,
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes a message and rejects ones without a kind or year.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, errors.New("ledger event without kind")
	}
	if msg.Year == 0 {
		return nil, errors.New("ledger event without year")
	}
	return &msg, nil
}
