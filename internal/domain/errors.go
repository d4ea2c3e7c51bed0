package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrRankConflict        = errors.New("rank conflict")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrNotRestorable       = errors.New("not restorable")
	ErrReportNotExportable = errors.New("report not exportable")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrConflict            = errors.New("conflict")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// TransitionError reports a status change that is not an edge of the
// loaded transition table.
type TransitionError struct {
	Table    string
	RecordID int64
	From     string
	To       string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %d: transition %s -> %s not allowed", e.Table, e.RecordID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ConflictError reports live rows that violate a uniqueness invariant.
// Kind is ErrRankConflict or ErrDuplicateKey.
type ConflictError struct {
	Kind  error
	Table string
	Scope string
	IDs   []int64
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s: %v in scope %s (ids %s)", e.Table, e.Kind, e.Scope, strings.Join(ids, ","))
}

func (e *ConflictError) Unwrap() error { return e.Kind }

// StorageError wraps a failure of the persistent store that is not a
// constraint violation: connection loss, serialization failure, audit
// write failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrStorageUnavailable, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorageUnavailable, e.Err} }

// KindOf returns the error taxonomy name of err for transport mapping.
// It returns "" for nil and "Internal" for unclassified errors.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrInvalidTransition):
		return "InvalidTransition"
	case errors.Is(err, ErrRankConflict):
		return "RankConflict"
	case errors.Is(err, ErrDuplicateKey):
		return "DuplicateKey"
	case errors.Is(err, ErrNotRestorable):
		return "NotRestorable"
	case errors.Is(err, ErrReportNotExportable):
		return "ReportNotExportable"
	case errors.Is(err, ErrValidation):
		return "Validation"
	case errors.Is(err, ErrConflict):
		return "Conflict"
	case errors.Is(err, ErrStorageUnavailable):
		return "StorageUnavailable"
	}
	return "Internal"
}
