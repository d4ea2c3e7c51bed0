package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
)

// Delete soft-deletes a record and, depth first, every live child reached
// through cascade relations. Independent relations are skipped. Rows are
// locked parent first, then children in declared relation order and by id.
// Deleting an already deleted record succeeds without changes.
func (s *Service) Delete(ctx context.Context, input DeleteInput) (err error) {
	defer func(started time.Time) { metrics.ObserveOperation("delete", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return err
	}
	class, err := s.reg.Class(input.Ref.Table)
	if err != nil {
		return err
	}

	var deleted int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rec, err := s.store.GetForUpdate(txCtx, input.Ref)
		if err != nil {
			return fmt.Errorf("get %s: %w", input.Ref, err)
		}
		if rec.IsDeleted() {
			return nil
		}

		scope, err := s.scopeOf(txCtx, class, rec.Fields, rec.ID)
		if err != nil {
			return fmt.Errorf("resolve scope: %w", err)
		}

		c := cascade{svc: s, actor: input.ActorID, comment: input.Comment, scope: scope}
		if err := c.delete(txCtx, class, rec); err != nil {
			return err
		}
		deleted = c.count
		return nil
	})
	if err != nil {
		return err
	}

	if deleted == 0 {
		s.log.DebugContext(ctx, "record already deleted", slog.String("ref", input.Ref.String()))
		return nil
	}
	metrics.Cascade("delete", deleted)

	s.log.InfoContext(ctx, "record deleted",
		slog.String("table", input.Ref.Table),
		slog.Int64("id", input.Ref.ID),
		slog.Int("cascaded", deleted),
		slog.String("actor_id", input.ActorID.String()),
	)

	return nil
}

// cascade carries the state of one delete or undelete traversal.
type cascade struct {
	svc     *Service
	actor   uuid.UUID
	comment string
	scope   domain.Ref
	count   int
}

func (c *cascade) delete(ctx context.Context, class *entity.Class, rec *domain.Record) error {
	deleted, err := c.svc.store.SoftDelete(ctx, rec.Ref(), c.actor)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", rec.Ref(), err)
	}
	c.count++

	if err := c.svc.record(ctx, domain.AuditEntry{
		Type:       domain.AuditTypeRemove,
		Table:      class.Table,
		EntryID:    deleted.ID,
		ScopeTable: c.scope.Table,
		ScopeID:    c.scope.ID,
		Previous:   domain.RemovalState(nil, nil),
		New:        domain.RemovalState(deleted.DeletedAt, deleted.DeletedBy),
		ActorID:    c.actor,
		Comment:    c.comment,
	}); err != nil {
		return err
	}

	for _, rel := range class.Children {
		if rel.Mode != domain.RelationCascade {
			continue
		}
		childClass, err := c.svc.reg.Class(rel.Child)
		if err != nil {
			return err
		}
		children, err := c.svc.store.Children(ctx, rel, rec.ID, nil, true)
		if err != nil {
			return fmt.Errorf("lock %s children of %s: %w", rel.Child, rec.Ref(), err)
		}
		for _, child := range children {
			if err := c.delete(ctx, childClass, child); err != nil {
				return err
			}
		}
	}
	return nil
}
