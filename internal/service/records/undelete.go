package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
)

// Undelete restores a soft-deleted record of a restorable class together
// with the cascade children deleted by the same call, identified by the
// same deletion stamp. Children of non-restorable classes stay deleted.
// A child cannot be restored while its parent is deleted. Restoring a live
// record returns it unchanged.
func (s *Service) Undelete(ctx context.Context, input UndeleteInput) (restored *domain.Record, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("undelete", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}
	class, err := s.reg.Class(input.Ref.Table)
	if err != nil {
		return nil, err
	}
	if !class.Restorable {
		return nil, fmt.Errorf("%s: %w", class.Table, domain.ErrNotRestorable)
	}

	var count int
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var undeleteErr error
		restored, count, undeleteErr = s.undelete(txCtx, class, input)
		return undeleteErr
	})
	if err != nil {
		return nil, err
	}

	if count > 0 {
		metrics.Cascade("undelete", count)
		s.log.InfoContext(ctx, "record restored",
			slog.String("table", restored.Table),
			slog.Int64("id", restored.ID),
			slog.Int("cascaded", count),
			slog.String("actor_id", input.ActorID.String()),
		)
	}

	return restored, nil
}

// undelete runs inside the caller's transaction and reports how many rows
// it restored.
func (s *Service) undelete(ctx context.Context, class *entity.Class, input UndeleteInput) (*domain.Record, int, error) {
	if class.Parent != "" {
		rec, err := s.store.Get(ctx, input.Ref)
		if err != nil {
			return nil, 0, fmt.Errorf("get %s: %w", input.Ref, err)
		}
		parentID, _ := domain.AsInt64(rec.Fields[class.ParentKey])
		parent, err := s.store.GetForUpdate(ctx, domain.Ref{Table: class.Parent, ID: parentID})
		if err != nil {
			return nil, 0, fmt.Errorf("lock parent: %w", err)
		}
		if parent.IsDeleted() {
			return nil, 0, fmt.Errorf("%s: parent %s is deleted: %w", input.Ref, parent.Ref(), domain.ErrNotRestorable)
		}
	}

	rec, err := s.store.GetForUpdate(ctx, input.Ref)
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", input.Ref, err)
	}
	if !rec.IsDeleted() {
		return rec, 0, nil
	}

	scope, err := s.scopeOf(ctx, class, rec.Fields, rec.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve scope: %w", err)
	}

	c := cascade{svc: s, actor: input.ActorID, comment: input.Comment, scope: scope}
	var touches []uniqueness.Touch
	restored, err := c.restore(ctx, class, rec, rec.Stamp(), &touches)
	if err != nil {
		return nil, 0, err
	}
	if err := s.guard.Verify(ctx, touches...); err != nil {
		return nil, 0, err
	}
	return restored, c.count, nil
}

// restore brings back rec and the cascade children carrying stamp. Each
// restored row takes its uniqueness locks before it becomes live again.
func (c *cascade) restore(ctx context.Context, class *entity.Class, rec *domain.Record, stamp *domain.DeletionStamp, touches *[]uniqueness.Touch) (*domain.Record, error) {
	touch := uniqueness.Touch{Table: class.Table, Fields: rec.Fields}
	if err := c.svc.guard.Lock(ctx, touch); err != nil {
		return nil, err
	}

	restored, err := c.svc.store.Restore(ctx, rec.Ref())
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", rec.Ref(), err)
	}
	c.count++
	*touches = append(*touches, touch)

	if err := c.svc.record(ctx, domain.AuditEntry{
		Type:       domain.AuditTypeChange,
		Table:      class.Table,
		EntryID:    restored.ID,
		ScopeTable: c.scope.Table,
		ScopeID:    c.scope.ID,
		Previous:   domain.RemovalState(rec.DeletedAt, rec.DeletedBy),
		New:        domain.RemovalState(nil, nil),
		ActorID:    c.actor,
		Comment:    c.comment,
	}); err != nil {
		return nil, err
	}

	for _, rel := range class.Children {
		if rel.Mode != domain.RelationCascade {
			continue
		}
		childClass, err := c.svc.reg.Class(rel.Child)
		if err != nil {
			return nil, err
		}
		if !childClass.Restorable {
			continue
		}
		children, err := c.svc.store.Children(ctx, rel, rec.ID, stamp, true)
		if err != nil {
			return nil, fmt.Errorf("lock %s children of %s: %w", rel.Child, rec.Ref(), err)
		}
		for _, child := range children {
			if _, err := c.restore(ctx, childClass, child, stamp, touches); err != nil {
				return nil, err
			}
		}
	}
	return restored, nil
}
