package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidGroup  = errors.New("invalid group")
	ErrInvalidKind   = errors.New("invalid budget kind")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidMonth  = errors.New("invalid month")

	// ErrAmountOutOfRange matches ErrInvalidAmount too.
	ErrAmountOutOfRange = fmt.Errorf("%w: out of range", ErrInvalidAmount)
)

// ValidationError reports user input that was rejected before any state
// changed. Err is one of the sentinel errors above so callers can use
// errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
