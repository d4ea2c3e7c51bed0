package records

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
)

// Revert undoes one change-history entry. A change entry is undone by
// applying its previous values as a new mutation, which writes its own
// change entry. A remove entry is undone by restoring the record and its
// cascade. Only the latest entry of a record can be reverted; create and
// status entries cannot be reverted at all.
func (s *Service) Revert(ctx context.Context, input RevertInput) (reverted *domain.Record, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("revert", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}

	var (
		entry domain.AuditEntry
		count int
	)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		entry, err = s.audit.Get(txCtx, input.EntryID)
		if err != nil {
			return fmt.Errorf("get audit entry %d: %w", input.EntryID, err)
		}
		if entry.Type != domain.AuditTypeChange && entry.Type != domain.AuditTypeRemove {
			return domain.NewValidationError("entry_id", fmt.Sprintf("%s entries cannot be reverted", entry.Type))
		}

		class, err := s.reg.Class(entry.Table)
		if err != nil {
			return err
		}
		ref := domain.Ref{Table: entry.Table, ID: entry.EntryID}

		if entry.Type == domain.AuditTypeRemove {
			if !class.Restorable {
				return fmt.Errorf("%s: %w", class.Table, domain.ErrNotRestorable)
			}
			if err := s.requireLatest(txCtx, entry); err != nil {
				return err
			}
			reverted, count, err = s.undelete(txCtx, class, UndeleteInput{
				Ref: ref, ActorID: input.ActorID, Comment: input.Comment,
			})
			return err
		}

		if _, ok := entry.Previous["deletedAt"]; ok {
			return domain.NewValidationError("entry_id", "restore entries cannot be reverted, delete the record instead")
		}
		patch := maps.Clone(entry.Previous)
		if errs := class.ValidatePatch(patch); len(errs) > 0 {
			return domain.NewValidationErrors(errs)
		}
		if _, err := s.store.GetForUpdate(txCtx, ref); err != nil {
			return fmt.Errorf("get %s: %w", ref, err)
		}
		if err := s.requireLatest(txCtx, entry); err != nil {
			return err
		}
		reverted, err = s.mutate(txCtx, class, MutateInput{
			Ref: ref, Patch: patch, ActorID: input.ActorID, Comment: input.Comment,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if count > 0 {
		metrics.Cascade("undelete", count)
	}
	s.log.InfoContext(ctx, "audit entry reverted",
		slog.Int64("entry_id", entry.ID),
		slog.String("type", entry.Type.String()),
		slog.String("table", reverted.Table),
		slog.Int64("id", reverted.ID),
		slog.String("actor_id", input.ActorID.String()),
	)

	return reverted, nil
}

// requireLatest rejects entries that later history of the same record has
// superseded.
func (s *Service) requireLatest(ctx context.Context, entry domain.AuditEntry) error {
	history, err := s.audit.History(ctx, entry.Table, entry.EntryID)
	if err != nil {
		return err
	}
	if len(history) == 0 || history[len(history)-1].ID != entry.ID {
		return fmt.Errorf("audit entry %d is not the latest for %s %d: %w",
			entry.ID, entry.Table, entry.EntryID, domain.ErrConflict)
	}
	return nil
}
