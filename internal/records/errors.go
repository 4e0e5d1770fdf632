package records

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is wrapped by every ValidationError.
var ErrInvalidRecord = errors.New("records: invalid record")

// ValidationError describes one payload record that could not be turned
// into a typed record.
type ValidationError struct {
	Kind  string // "task", "habit", "log" or "snapshot"
	Index int    // position in the payload array, -1 when not applicable
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	where := e.Kind
	if e.Index >= 0 {
		where = fmt.Sprintf("%s[%d]", e.Kind, e.Index)
	}
	if e.Field != "" {
		where += "." + e.Field
	}
	msg := "records: invalid " + where
	if e.Value != "" {
		msg += fmt.Sprintf(" (%q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidRecord}
	}
	return []error{ErrInvalidRecord, e.Err}
}

func invalid(kind string, index int, field, value string, err error) *ValidationError {
	return &ValidationError{Kind: kind, Index: index, Field: field, Value: value, Err: err}
}
