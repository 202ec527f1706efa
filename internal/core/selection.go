package core

import (
	"strconv"
	"time"
)

// DefaultYear is the fiscal year the ledger tracks unless configured otherwise.
const DefaultYear = 2026

var monthNames = [12]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL",
	"MAYO", "JUNIO", "JULIO", "AGOSTO",
	"SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// MonthName returns the upper-case Spanish label for m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// Selection is the year/month currently in view. It is never persisted.
type Selection struct {
	Year  int
	Month time.Month
}

// NewSelection starts on the current month when now falls in year,
// otherwise on January.
func NewSelection(now time.Time, year int) Selection {
	if now.Year() == year {
		return Selection{Year: year, Month: now.Month()}
	}
	return Selection{Year: year, Month: time.January}
}

// Next moves one month forward, wrapping December to January of the same year.
func (s Selection) Next() Selection {
	return s.Shift(1)
}

// Prev moves one month back, wrapping January to December of the same year.
func (s Selection) Prev() Selection {
	return s.Shift(-1)
}

// Shift moves delta months, staying inside the selected year.
func (s Selection) Shift(delta int) Selection {
	idx := (int(s.Month) - 1 + delta) % 12
	if idx < 0 {
		idx += 12
	}
	s.Month = time.Month(idx + 1)
	return s
}

// Label returns e.g. "MARZO 2026".
func (s Selection) Label() string {
	return MonthName(s.Month) + " " + strconv.Itoa(s.Year)
}

