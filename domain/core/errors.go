package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnknownRecord    = fmt.Errorf("%w: record", ErrNotFound)
	ErrUnknownNode      = fmt.Errorf("%w: hierarchy node", ErrNotFound)
	ErrUnknownGroup     = fmt.Errorf("%w: group", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("%w: session", ErrNotFound)
	ErrSnapshotNotFound = fmt.Errorf("%w: saved view", ErrNotFound)

	// Validation errors
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrEmptyDataset     = errors.New("dataset has no records")
	ErrMalformedInput   = errors.New("malformed input")
)

// NewUnknownFieldError reports a field that is not valid for the given role
// (e.g. "grouping", "dimension").
func NewUnknownFieldError(role, field string) error {
	return fmt.Errorf("%w: %s %q", ErrUnknownField, role, field)
}

func NewUnknownRecordError(id RecordID) error {
	return fmt.Errorf("%w %q", ErrUnknownRecord, id)
}

func NewUnknownNodeError(path []string) error {
	return fmt.Errorf("%w %v", ErrUnknownNode, path)
}

func NewUnknownGroupError(label string) error {
	return fmt.Errorf("%w %q", ErrUnknownGroup, label)
}

func NewInvalidParameterError(name string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, name, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsUnknownFieldError(err error) bool {
	return errors.Is(err, ErrUnknownField)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnknownField) ||
		errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrMalformedInput)
}
