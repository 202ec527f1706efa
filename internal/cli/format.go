package cli

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"homebudget/internal/core"
)

// Formatter renders amounts with the grouping and decimal marks of a locale.
type Formatter struct {
	p *message.Printer
}

func NewFormatter(tag language.Tag) Formatter {
	return Formatter{p: message.NewPrinter(tag)}
}

// ParseLanguage returns the tag for s, falling back to Spanish.
func ParseLanguage(s string) language.Tag {
	if s == "" {
		return language.Spanish
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Spanish
	}
	return tag
}

// Money formats m as e.g. "12.345,50 €".
func (f Formatter) Money(m core.Money) string {
	return f.p.Sprintf("%.2f €", m.Euros().InexactFloat64())
}

// Sprintf formats with the locale's number conventions.
func (f Formatter) Sprintf(format string, args ...any) string {
	return f.p.Sprintf(format, args...)
}
