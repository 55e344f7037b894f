package afford

import (
	"errors"
	"fmt"
)

// ErrInvalidLocation is wrapped by sources that reject the searched location.
var ErrInvalidLocation = errors.New("invalid location")

// ValidationError reports a request parameter rejected before or by a source.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

const (
	SourceListings = "listings"
	SourceIncome   = "income"
)

// SourceError aborts a run: the named external source failed or answered garbage.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// RowError records a listing that could not be priced. The row stays in the
// table with an unknown affordability.
type RowError struct {
	Index   int    `json:"index"`
	Address string `json:"address"`
	Reason  string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("listing %d (%s): %s", e.Index, e.Address, e.Reason)
}
