// Package uniqueness enforces the live-rank and dedup invariants inside the
// caller's transaction. Writers lock every scope they touch with an
// advisory transaction lock before writing, then re-read the scopes before
// commit. The lock serializes concurrent writers on one scope, so the
// second writer sees the first writer's committed rows and fails instead
// of committing a duplicate.
package uniqueness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
)

type guardRepo interface {
	LockScopes(ctx context.Context, keys ...string) error
	RankCollisions(ctx context.Context, table, rankColumn string, scope map[string]any) ([]int64, error)
	DedupCollisions(ctx context.Context, table, keyColumn, key string) ([]int64, error)
}

// Touch names a record state a transaction writes: the fields of a row
// after (or before) the write. Touches of classes without uniqueness rules
// are ignored.
type Touch struct {
	Table  string
	Fields map[string]any
}

// Enforcer applies the uniqueness rules of the entity registry.
type Enforcer struct {
	reg   *entity.Registry
	guard guardRepo
}

// NewEnforcer creates a new Enforcer.
func NewEnforcer(reg *entity.Registry, guard guardRepo) *Enforcer {
	return &Enforcer{reg: reg, guard: guard}
}

// Lock takes the advisory locks of every scope touched, in sorted order.
// It must run before the writes it protects.
func (e *Enforcer) Lock(ctx context.Context, touches ...Touch) error {
	scopes, err := e.scopes(touches)
	if err != nil {
		return err
	}
	if len(scopes) == 0 {
		return nil
	}

	keys := make([]string, len(scopes))
	for i, s := range scopes {
		keys[i] = s.key
	}
	if err := e.guard.LockScopes(ctx, keys...); err != nil {
		return fmt.Errorf("lock uniqueness scopes: %w", err)
	}
	return nil
}

// Verify re-reads every touched scope and fails with a *domain.ConflictError
// if live rows violate a rule. It must run after the writes, before commit.
func (e *Enforcer) Verify(ctx context.Context, touches ...Touch) error {
	scopes, err := e.scopes(touches)
	if err != nil {
		return err
	}

	for _, s := range scopes {
		switch {
		case s.ranking != nil:
			ids, err := e.guard.RankCollisions(ctx, s.table, s.ranking.RankColumn, s.values)
			if err != nil {
				return fmt.Errorf("verify ranks: %w", err)
			}
			if len(ids) > 0 {
				return &domain.ConflictError{Kind: domain.ErrRankConflict, Table: s.table, Scope: s.key, IDs: ids}
			}
		case s.dedup != nil:
			ids, err := e.guard.DedupCollisions(ctx, s.table, s.dedup.KeyColumn, s.dedupKey)
			if err != nil {
				return fmt.Errorf("verify dedup key: %w", err)
			}
			if len(ids) > 1 {
				return &domain.ConflictError{Kind: domain.ErrDuplicateKey, Table: s.table, Scope: s.key, IDs: ids}
			}
		}
	}
	return nil
}

// DedupKey returns the canonical dedup key of fields for a class with a
// dedup rule. List order is significant.
func DedupKey(class *entity.Class, fields map[string]any) (string, error) {
	if class.Dedup == nil {
		return "", fmt.Errorf("%s has no dedup rule", class.Table)
	}
	values := make([]any, len(class.Dedup.Columns))
	for i, col := range class.Dedup.Columns {
		values[i] = fields[col]
	}
	key, err := domain.DedupKey(values...)
	if err != nil {
		return "", domain.NewValidationError(class.Dedup.Columns[0], err.Error())
	}
	return key, nil
}

type scope struct {
	key      string
	table    string
	ranking  *entity.Ranking
	values   map[string]any
	dedup    *entity.Dedup
	dedupKey string
}

// scopes resolves touches into distinct scopes sorted by key.
func (e *Enforcer) scopes(touches []Touch) ([]scope, error) {
	byKey := make(map[string]scope)
	for _, t := range touches {
		class, err := e.reg.Class(t.Table)
		if err != nil {
			return nil, err
		}

		if r := class.Ranking; r != nil {
			values := make(map[string]any, len(r.ScopeColumns))
			parts := []string{class.Table}
			for _, col := range r.ScopeColumns {
				v := scopeValue(class, col, t.Fields[col])
				values[col] = v
				parts = append(parts, fmt.Sprint(v))
			}
			key := "rank:" + strings.Join(parts, ":")
			byKey[key] = scope{key: key, table: class.Table, ranking: r, values: values}
		}

		if d := class.Dedup; d != nil {
			dk, err := DedupKey(class, t.Fields)
			if err != nil {
				return nil, err
			}
			key := "dedup:" + class.Table + ":" + dk
			byKey[key] = scope{key: key, table: class.Table, dedup: d, dedupKey: dk}
		}
	}

	out := make([]scope, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b scope) int { return strings.Compare(a.key, b.key) })
	return out, nil
}

// scopeValue normalizes JSON decoded numbers so that scope keys and query
// arguments agree with the stored integer columns.
func scopeValue(class *entity.Class, col string, v any) any {
	if c, ok := class.Column(col); ok && c.Kind == entity.KindInt {
		if n, ok := domain.AsInt64(v); ok {
			return n
		}
	}
	return v
}
