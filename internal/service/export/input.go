package export

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

// SnapshotInput holds the parameters for taking a snapshot. Table defaults
// to reports.
type SnapshotInput struct {
	Table    string
	ReportID int64
	ActorID  uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i SnapshotInput) Validate() error {
	var errs []domain.FieldError
	if i.ReportID <= 0 {
		errs = append(errs, domain.FieldError{Field: "report_id", Message: "must be positive"})
	}
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// MarkResultInput carries the renderer's outcome for one snapshot.
type MarkResultInput struct {
	Key     string
	Success bool
	Log     *string
}

// Validate checks all fields and collects all errors.
func (i MarkResultInput) Validate() error {
	if i.Key == "" {
		return domain.NewValidationError("key", "required")
	}
	return nil
}
