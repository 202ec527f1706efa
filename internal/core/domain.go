package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"

	Ingreso Group = "ingreso" // income
	Factura Group = "factura" // fixed bill
	Gasto   Group = "gasto"   // variable expense

	// DefaultCategory is used when neither a preset nor a custom category is given.
	DefaultCategory = "Otros"
	// DefaultDescription replaces an empty description.
	DefaultDescription = "(sin descripción)"

	dateLayout = "2006-01-02"
)

type (
	TxType string
	Group  string

	// ID identifies a transaction for its whole lifetime.
	ID string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID          ID        `json:"id"`
		Date        Date      `json:"date"`
		Type        TxType    `json:"type"`
		Group       Group     `json:"group"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Notes       string    `json:"notes"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

// Type returns the transaction type implied by the group.
func (g Group) Type() TxType {
	if g == Ingreso {
		return Income
	}
	return Expense
}

// Valid reports whether g is one of the known groups.
func (g Group) Valid() bool {
	switch g {
	case Ingreso, Factura, Gasto:
		return true
	}
	return false
}

// ParseGroup accepts the group names case-insensitively.
func ParseGroup(s string) (Group, error) {
	g := Group(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", &ValidationError{Field: "group", Message: fmt.Sprintf("unknown group %q", s), Err: ErrInvalidGroup}
	}
	return g, nil
}

// UnmarshalJSON accepts both string ids and the numeric ids written by
// older versions of the data files.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q", s), Err: ErrInvalidDate}
	}
	return Date{Time: t}, nil
}

// In reports whether the date falls in the given year and month.
func (d Date) In(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

// UnmarshalJSON accepts YYYY-MM-DD and, for robustness, full RFC 3339
// timestamps, of which only the calendar date is kept.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = Date{Time: t}
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = DateOf(t)
	return nil
}

// ClampedDay returns the date with the given day in year/month, moved back
// to the last day of that month when the month is shorter.
func ClampedDay(year int, month time.Month, day int) Date {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day)
}

// Validate checks the stored invariants of a transaction.
func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "date cannot be zero", Err: ErrInvalidDate}
	}
	if !t.Group.Valid() {
		return &ValidationError{Field: "group", Message: fmt.Sprintf("unknown group %q", t.Group), Err: ErrInvalidGroup}
	}
	if t.Type != t.Group.Type() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("type %q does not match group %q", t.Type, t.Group), Err: ErrInvalidGroup}
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}
