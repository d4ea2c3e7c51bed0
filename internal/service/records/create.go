package records

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
)

// Create inserts a record of any class. Workflow classes start in their
// table's initial state; dedup classes get their canonical key. Children
// can only be created under a live parent.
func (s *Service) Create(ctx context.Context, input CreateInput) (rec *domain.Record, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("create", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}
	class, err := s.reg.Class(input.Table)
	if err != nil {
		return nil, err
	}
	if errs := class.ValidateCreate(input.Fields); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	fields := maps.Clone(input.Fields)
	if class.Workflow {
		wf, err := s.workflows.For(class.Table)
		if err != nil {
			return nil, err
		}
		fields["status"] = wf.Initial
	}
	if class.Dedup != nil {
		key, err := uniqueness.DedupKey(class, fields)
		if err != nil {
			return nil, err
		}
		fields[class.Dedup.KeyColumn] = key
	}
	touch := uniqueness.Touch{Table: class.Table, Fields: fields}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if class.Parent != "" {
			parentID, _ := domain.AsInt64(fields[class.ParentKey])
			parent, err := s.store.GetForUpdate(txCtx, domain.Ref{Table: class.Parent, ID: parentID})
			if err != nil {
				return fmt.Errorf("lock parent: %w", err)
			}
			if parent.IsDeleted() {
				return fmt.Errorf("%s is deleted: %w", parent.Ref(), domain.ErrNotFound)
			}
		}

		if err := s.guard.Lock(txCtx, touch); err != nil {
			return err
		}

		var insertErr error
		rec, insertErr = s.store.Insert(txCtx, class.Table, fields)
		if insertErr != nil {
			return fmt.Errorf("insert %s: %w", class.Table, insertErr)
		}

		if err := s.guard.Verify(txCtx, touch); err != nil {
			return err
		}

		scope, err := s.scopeOf(txCtx, class, rec.Fields, rec.ID)
		if err != nil {
			return fmt.Errorf("resolve scope: %w", err)
		}
		_, next := domain.Diff(nil, audited(class, rec.Fields))
		return s.record(txCtx, domain.AuditEntry{
			Type:       domain.AuditTypeCreate,
			Table:      class.Table,
			EntryID:    rec.ID,
			ScopeTable: scope.Table,
			ScopeID:    scope.ID,
			New:        next,
			ActorID:    input.ActorID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "record created",
		slog.String("table", rec.Table),
		slog.Int64("id", rec.ID),
		slog.String("actor_id", input.ActorID.String()),
	)

	return rec, nil
}
