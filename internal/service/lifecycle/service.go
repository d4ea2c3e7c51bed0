// Package lifecycle applies report workflow transitions. A status change
// and its status audit entry commit together or not at all.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

type recordStore interface {
	GetForUpdate(ctx context.Context, ref domain.Ref) (*domain.Record, error)
	Update(ctx context.Context, ref domain.Ref, set map[string]any) (*domain.Record, error)
}

type auditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
}

type workflows interface {
	For(table string) (*workflow.Table, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the report state machine.
type Service struct {
	reg       *entity.Registry
	store     recordStore
	audit     auditLog
	workflows workflows
	tx        txManager
	log       *slog.Logger
}

// NewService creates a new lifecycle service.
func NewService(
	log *slog.Logger,
	reg *entity.Registry,
	store recordStore,
	audit auditLog,
	workflows workflows,
	tx txManager,
) *Service {
	return &Service{
		reg:       reg,
		store:     store,
		audit:     audit,
		workflows: workflows,
		tx:        tx,
		log:       log.With("service", "lifecycle"),
	}
}

// TransitionInput holds the parameters for a status change.
type TransitionInput struct {
	Table   string
	ID      int64
	To      string
	ActorID uuid.UUID
	Comment string
}

// Validate checks all fields and collects all errors.
func (i TransitionInput) Validate() error {
	var errs []domain.FieldError
	if i.Table == "" {
		errs = append(errs, domain.FieldError{Field: "table", Message: "required"})
	}
	if i.ID <= 0 {
		errs = append(errs, domain.FieldError{Field: "id", Message: "must be positive"})
	}
	if i.To == "" {
		errs = append(errs, domain.FieldError{Field: "to", Message: "required"})
	}
	if i.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actor_id", Message: "required"})
	}
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ApplyTransition moves a live report from its current status to
// input.To. A transition that is not an edge of the loaded table fails
// with ErrInvalidTransition and leaves the record and the audit log
// untouched.
func (s *Service) ApplyTransition(ctx context.Context, input TransitionInput) (updated *domain.Record, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("transition", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}
	class, err := s.reg.Class(input.Table)
	if err != nil {
		return nil, err
	}
	if !class.Workflow {
		return nil, domain.NewValidationError("table", fmt.Sprintf("%s has no workflow", input.Table))
	}
	wf, err := s.workflows.For(input.Table)
	if err != nil {
		return nil, err
	}

	ref := domain.Ref{Table: input.Table, ID: input.ID}
	var from string
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := s.store.GetForUpdate(txCtx, ref)
		if err != nil {
			return fmt.Errorf("get %s: %w", ref, err)
		}
		if rec.IsDeleted() {
			return fmt.Errorf("%s is deleted: %w", ref, domain.ErrNotFound)
		}

		from = rec.Status()
		if !wf.HasState(from) {
			s.log.WarnContext(txCtx, "status outside transition table",
				slog.String("table", input.Table),
				slog.Int64("id", rec.ID),
				slog.String("status", from),
				slog.Int("workflow_version", wf.Version),
			)
		}
		if err := wf.Check(rec.ID, from, input.To); err != nil {
			return err
		}

		var updateErr error
		updated, updateErr = s.store.Update(txCtx, ref, map[string]any{"status": input.To})
		if updateErr != nil {
			return fmt.Errorf("update %s: %w", ref, updateErr)
		}

		if _, err := s.audit.Record(txCtx, domain.AuditEntry{
			Type:       domain.AuditTypeStatus,
			Table:      input.Table,
			EntryID:    rec.ID,
			ScopeTable: input.Table,
			ScopeID:    rec.ID,
			Previous:   map[string]any{"status": from},
			New:        map[string]any{"status": input.To},
			ActorID:    input.ActorID,
			Comment:    input.Comment,
		}); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Transition(input.Table, from, input.To)
	s.log.InfoContext(ctx, "status changed",
		slog.String("table", input.Table),
		slog.Int64("id", input.ID),
		slog.String("from", from),
		slog.String("to", input.To),
		slog.Int("workflow_version", wf.Version),
		slog.String("actor_id", input.ActorID.String()),
	)

	return updated, nil
}
