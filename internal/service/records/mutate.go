package records

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
)

// Mutate applies a patch to a live record and writes exactly one change
// entry holding the fields that actually changed. A patch that changes
// nothing still writes an entry with empty payloads.
func (s *Service) Mutate(ctx context.Context, input MutateInput) (updated *domain.Record, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("mutate", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}
	class, err := s.reg.Class(input.Ref.Table)
	if err != nil {
		return nil, err
	}
	if errs := class.ValidatePatch(input.Patch); len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var mutateErr error
		updated, mutateErr = s.mutate(txCtx, class, input)
		return mutateErr
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "record mutated",
		slog.String("table", updated.Table),
		slog.Int64("id", updated.ID),
		slog.String("actor_id", input.ActorID.String()),
	)

	return updated, nil
}

// mutate runs inside the caller's transaction. The patch must already have
// passed class validation.
func (s *Service) mutate(ctx context.Context, class *entity.Class, input MutateInput) (*domain.Record, error) {
	old, err := s.store.GetForUpdate(ctx, input.Ref)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", input.Ref, err)
	}
	if old.IsDeleted() {
		return nil, fmt.Errorf("%s is deleted: %w", input.Ref, domain.ErrNotFound)
	}

	set := maps.Clone(input.Patch)
	merged := maps.Clone(old.Fields)
	maps.Copy(merged, set)
	if class.Dedup != nil {
		key, err := uniqueness.DedupKey(class, merged)
		if err != nil {
			return nil, err
		}
		set[class.Dedup.KeyColumn] = key
		merged[class.Dedup.KeyColumn] = key
	}

	touches := []uniqueness.Touch{
		{Table: class.Table, Fields: old.Fields},
		{Table: class.Table, Fields: merged},
	}
	if err := s.guard.Lock(ctx, touches...); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, input.Ref, set)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", input.Ref, err)
	}

	if err := s.guard.Verify(ctx, touches...); err != nil {
		return nil, err
	}

	scope, err := s.scopeOf(ctx, class, updated.Fields, updated.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	prev, next := domain.Diff(audited(class, old.Fields), audited(class, updated.Fields))
	if err := s.record(ctx, domain.AuditEntry{
		Type:       domain.AuditTypeChange,
		Table:      class.Table,
		EntryID:    updated.ID,
		ScopeTable: scope.Table,
		ScopeID:    scope.ID,
		Previous:   prev,
		New:        next,
		ActorID:    input.ActorID,
		Comment:    input.Comment,
	}); err != nil {
		return nil, err
	}
	return updated, nil
}
