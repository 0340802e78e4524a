package daterange

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConflictingOptions is returned when more than one range mode is selected.
	ErrConflictingOptions = errors.New("conflicting date range options")

	// ErrInvalidRange is returned for malformed custom months and inverted ranges.
	ErrInvalidRange = errors.New("invalid date range")
)

// ConflictingOptionsError lists the modes that were selected together.
type ConflictingOptionsError struct {
	Modes []Mode
}

func (e *ConflictingOptionsError) Error() string {
	names := make([]string, 0, len(e.Modes))
	for _, m := range e.Modes {
		names = append(names, string(m))
	}
	return fmt.Sprintf("only one of week, month, custom month or start/end may be used (got %s)",
		strings.Join(names, ", "))
}

func (e *ConflictingOptionsError) Unwrap() error {
	return ErrConflictingOptions
}

// InvalidRangeError describes why an input could not be turned into a range.
type InvalidRangeError struct {
	Input  string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	if e.Input == "" {
		return "invalid date range: " + e.Reason
	}
	return fmt.Sprintf("invalid date range %q: %s", e.Input, e.Reason)
}

func (e *InvalidRangeError) Unwrap() error {
	return ErrInvalidRange
}
