package records

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

// CreateInput holds the parameters for creating a record.
type CreateInput struct {
	Table   string
	Fields  map[string]any
	ActorID uuid.UUID
}

// Validate checks the caller-independent fields; column checks need the
// entity class and run in the service.
func (i CreateInput) Validate() error {
	var errs []domain.FieldError
	if i.Table == "" {
		errs = append(errs, domain.FieldError{Field: "table", Message: "required"})
	}
	if i.Fields == nil {
		errs = append(errs, domain.FieldError{Field: "fields", Message: "required"})
	}
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// MutateInput holds the parameters for patching a record.
type MutateInput struct {
	Ref     domain.Ref
	Patch   map[string]any
	ActorID uuid.UUID
	Comment string
}

// Validate checks all fields and collects all errors.
func (i MutateInput) Validate() error {
	var errs []domain.FieldError
	errs = append(errs, validateRef(i.Ref)...)
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RankAssignment moves one ranked record to a new rank.
type RankAssignment struct {
	ID   int64
	Rank int64
}

// ReorderInput holds a set of rank assignments applied atomically.
type ReorderInput struct {
	Table       string
	Assignments []RankAssignment
	ActorID     uuid.UUID
	Comment     string
}

// Validate checks all fields and collects all errors.
func (i ReorderInput) Validate() error {
	var errs []domain.FieldError
	if i.Table == "" {
		errs = append(errs, domain.FieldError{Field: "table", Message: "required"})
	}
	if len(i.Assignments) == 0 {
		errs = append(errs, domain.FieldError{Field: "assignments", Message: "at least one assignment is required"})
	}
	seen := make(map[int64]bool, len(i.Assignments))
	for _, a := range i.Assignments {
		if a.ID <= 0 {
			errs = append(errs, domain.FieldError{Field: "assignments", Message: "id must be positive"})
			break
		}
		if seen[a.ID] {
			errs = append(errs, domain.FieldError{Field: "assignments", Message: "duplicate id"})
			break
		}
		seen[a.ID] = true
	}
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// DeleteInput holds the parameters for soft-deleting a record.
type DeleteInput struct {
	Ref     domain.Ref
	ActorID uuid.UUID
	Comment string
}

// Validate checks all fields and collects all errors.
func (i DeleteInput) Validate() error {
	errs := validateRef(i.Ref)
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UndeleteInput holds the parameters for restoring a record.
type UndeleteInput struct {
	Ref     domain.Ref
	ActorID uuid.UUID
	Comment string
}

// Validate checks all fields and collects all errors.
func (i UndeleteInput) Validate() error {
	errs := validateRef(i.Ref)
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// RevertInput identifies the audit entry to undo.
type RevertInput struct {
	EntryID int64
	ActorID uuid.UUID
	Comment string
}

// Validate checks all fields and collects all errors.
func (i RevertInput) Validate() error {
	var errs []domain.FieldError
	if i.EntryID <= 0 {
		errs = append(errs, domain.FieldError{Field: "entry_id", Message: "must be positive"})
	}
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateRef(ref domain.Ref) []domain.FieldError {
	var errs []domain.FieldError
	if ref.Table == "" {
		errs = append(errs, domain.FieldError{Field: "table", Message: "required"})
	}
	if ref.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	return errs
}
