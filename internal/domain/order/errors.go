package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReorderIndex is returned when a reorder event points outside
	// the sequence the user was looking at.
	ErrInvalidReorderIndex = errors.New("invalid reorder index")

	// ErrDuplicateIdentifier is returned when a replacement order would
	// contain the same id twice.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")

	// ErrStaleIdentifier marks an id that has no matching descriptor.
	ErrStaleIdentifier = errors.New("stale identifier reference")
)

// ReorderError describes a rejected reorder event.
type ReorderError struct {
	MovedID   string
	FromIndex int
	ToIndex   int
	Length    int
	Reason    string
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("%s: move %q from %d to %d in sequence of length %d: %s",
		ErrInvalidReorderIndex, e.MovedID, e.FromIndex, e.ToIndex, e.Length, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidReorderIndex.
func (e *ReorderError) Unwrap() error {
	return ErrInvalidReorderIndex
}

// DuplicateError names the id that appeared twice in a replacement order.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateIdentifier, e.ID)
}

// Unwrap lets errors.Is match ErrDuplicateIdentifier.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateIdentifier
}

// StaleError lists order ids that have no matching descriptor.
type StaleError struct {
	IDs []string
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrStaleIdentifier, strings.Join(e.IDs, ", "))
}

// Unwrap lets errors.Is match ErrStaleIdentifier.
func (e *StaleError) Unwrap() error {
	return ErrStaleIdentifier
}

// Error codes reported to clients
const (
	CodeInvalidReorderIndex = "invalid_reorder_index"
	CodeDuplicateIdentifier = "duplicate_identifier"
	CodeInternal            = "internal"
)

// Code maps an error to its client error code. A nil error has no code.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidReorderIndex):
		return CodeInvalidReorderIndex
	case errors.Is(err, ErrDuplicateIdentifier):
		return CodeDuplicateIdentifier
	default:
		return CodeInternal
	}
}
