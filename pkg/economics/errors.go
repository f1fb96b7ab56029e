package economics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a malformed subscription record.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPrecondition reports a violated caller contract, such as a threshold below one
	// day or urgency requested for a record that is not active.
	ErrPrecondition = errors.New("precondition violation")
)

// InputError describes which record and field failed validation.
type InputError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *InputError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("invalid input [record=%s, field=%s]: %s", e.RecordID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid input [field=%s]: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// PreconditionError describes the operation whose contract was violated.
type PreconditionError struct {
	Operation string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violation [operation=%s]: %s", e.Operation, e.Reason)
}

// Unwrap lets errors.Is match ErrPrecondition.
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

func inputError(id, field, reason string) error {
	return &InputError{RecordID: id, Field: field, Reason: reason}
}

func preconditionError(op, format string, args ...any) error {
	return &PreconditionError{Operation: op, Reason: fmt.Sprintf(format, args...)}
}
