package records

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
)

// Reorder assigns new ranks to a set of live ranked records in one
// transaction. Ranks may collide between individual writes; only the state
// at the end of the transaction must have unique live ranks per scope.
// Records are locked in id order. Each record whose rank changes gets one
// change entry.
func (s *Service) Reorder(ctx context.Context, input ReorderInput) (out []*domain.Record, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("reorder", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}
	class, err := s.reg.Class(input.Table)
	if err != nil {
		return nil, err
	}
	if class.Ranking == nil {
		return nil, domain.NewValidationError("table", fmt.Sprintf("%s has no ranking", class.Table))
	}
	rankCol := class.Ranking.RankColumn

	ordered := slices.Clone(input.Assignments)
	slices.SortFunc(ordered, func(a, b RankAssignment) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	byID := make(map[int64]*domain.Record, len(ordered))
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		olds := make([]*domain.Record, 0, len(ordered))
		touches := make([]uniqueness.Touch, 0, len(ordered))
		for _, a := range ordered {
			ref := domain.Ref{Table: class.Table, ID: a.ID}
			old, err := s.store.GetForUpdate(txCtx, ref)
			if err != nil {
				return fmt.Errorf("get %s: %w", ref, err)
			}
			if old.IsDeleted() {
				return fmt.Errorf("%s is deleted: %w", ref, domain.ErrNotFound)
			}
			olds = append(olds, old)
			touches = append(touches, uniqueness.Touch{Table: class.Table, Fields: old.Fields})
		}

		if err := s.guard.Lock(txCtx, touches...); err != nil {
			return err
		}

		for i, a := range ordered {
			old := olds[i]
			if cur, _ := old.Int64(rankCol); cur == a.Rank {
				byID[a.ID] = old
				continue
			}

			updated, err := s.store.Update(txCtx, old.Ref(), map[string]any{rankCol: a.Rank})
			if err != nil {
				return fmt.Errorf("update %s: %w", old.Ref(), err)
			}
			byID[a.ID] = updated

			scope, err := s.scopeOf(txCtx, class, updated.Fields, updated.ID)
			if err != nil {
				return fmt.Errorf("resolve scope: %w", err)
			}
			prev, next := domain.Diff(
				map[string]any{rankCol: old.Fields[rankCol]},
				map[string]any{rankCol: updated.Fields[rankCol]},
			)
			if err := s.record(txCtx, domain.AuditEntry{
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
				return err
			}
		}

		return s.guard.Verify(txCtx, touches...)
	})
	if err != nil {
		return nil, err
	}

	out = make([]*domain.Record, len(input.Assignments))
	for i, a := range input.Assignments {
		out[i] = byID[a.ID]
	}

	s.log.InfoContext(ctx, "records reordered",
		slog.String("table", class.Table),
		slog.Int("count", len(out)),
		slog.String("actor_id", input.ActorID.String()),
	)

	return out, nil
}
