package prefs

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateField is matched by *DuplicateFieldError.
	ErrDuplicateField   = errors.New("prefs: duplicate field name")
	ErrInvalidFieldName = errors.New("prefs: invalid field name")
	ErrAlreadyLoaded    = errors.New("prefs: document already loaded")
	ErrRuleRejected     = errors.New("prefs: value rejected by rule")
	ErrNilSlot          = errors.New("prefs: field slot is nil")
)

// DuplicateFieldError reports two adapters registered under one name.
type DuplicateFieldError struct {
	Name   string
	First  int
	Second int
}

func (e *DuplicateFieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: field %q registered twice (positions %d and %d)", e.Name, e.First, e.Second)
}

func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrDuplicateField
}

// LoadError reports a document whose top-level structure could not be parsed.
type LoadError struct {
	Format string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: load %s document: %v", describeFormat(e.Format), e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeError reports one stored field that could not be applied.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: decode field %q: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WriteError reports a failed background write. The engine retries on the
// next tick.
type WriteError struct {
	SnapshotID string
	Store      string
	Err        error
}

func (e *WriteError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("prefs: write snapshot %s to %s: %v", e.SnapshotID, e.Store, e.Err)
}

func (e *WriteError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeFormat(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}
