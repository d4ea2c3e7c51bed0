// Package guard provides the storage side of the uniqueness enforcer:
// transaction-scoped advisory locks and the pre-commit collision queries.
package guard

import (
	"context"
	"fmt"
	"slices"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const lockSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

// Repo runs guard queries. It must be used inside a transaction: advisory
// locks are released when the transaction ends.
type Repo struct {
	db postgres.Querier
}

// New creates a new guard repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// LockScopes takes an advisory transaction lock per key. Keys are locked
// in sorted order with duplicates removed so that concurrent writers
// touching the same scopes cannot deadlock.
func (r *Repo) LockScopes(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if !postgres.InTx(ctx) {
		return fmt.Errorf("lock scopes: advisory locks require a transaction")
	}

	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	q := postgres.QuerierFromCtx(ctx, r.db)
	for _, key := range sorted {
		if _, err := q.Exec(ctx, lockSQL, key); err != nil {
			return postgres.MapError(err, "lock scope "+key)
		}
	}
	return nil
}

// RankCollisions returns the ids of live rows within scope that share a
// rank with another live row, ordered by rank then id.
func (r *Repo) RankCollisions(ctx context.Context, table, rankColumn string, scope map[string]any) ([]int64, error) {
	rank := pgx.Identifier{rankColumn}.Sanitize()
	cols := make([]string, 0, len(scope))
	for col := range scope {
		cols = append(cols, col)
	}
	slices.Sort(cols)

	where := sq.And{}
	for _, col := range cols {
		where = append(where, sq.Eq{pgx.Identifier{col}.Sanitize(): scope[col]})
	}
	where = append(where, sq.Eq{"deleted_at": nil})

	dup := psql.Select(rank).
		From(pgx.Identifier{table}.Sanitize()).
		Where(where).
		GroupBy(rank).
		Having("count(*) > 1")

	query := psql.Select("id").
		From(pgx.Identifier{table}.Sanitize()).
		Where(where).
		Where(sq.Expr(rank+" IN (?)", dup)).
		OrderBy(rank, "id")

	return r.ids(ctx, query, "rank collisions "+table)
}

// DedupCollisions returns the ids of live rows carrying key in keyColumn.
// More than one id means the dedup invariant is broken.
func (r *Repo) DedupCollisions(ctx context.Context, table, keyColumn, key string) ([]int64, error) {
	query := psql.Select("id").
		From(pgx.Identifier{table}.Sanitize()).
		Where(sq.Eq{pgx.Identifier{keyColumn}.Sanitize(): key, "deleted_at": nil}).
		OrderBy("id")

	return r.ids(ctx, query, "dedup collisions "+table)
}

func (r *Repo) ids(ctx context.Context, query sq.SelectBuilder, op string) ([]int64, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", op, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	return ids, nil
}
