// Package record implements the generic entity store over every class of
// the registry. Queries are built with squirrel from the class columns.
package record

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store provides record persistence backed by PostgreSQL.
type Store struct {
	db  postgres.Querier
	reg *entity.Registry
}

// New creates a new record store.
func New(db postgres.Querier, reg *entity.Registry) *Store {
	return &Store{db: db, reg: reg}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Insert creates a record with a fresh ident and returns the persisted row.
// Callers set status and dedup key columns; system columns are assigned here.
func (s *Store) Insert(ctx context.Context, table string, fields map[string]any) (*domain.Record, error) {
	class, err := s.reg.Class(table)
	if err != nil {
		return nil, err
	}

	cols := sortedKeys(fields)
	vals := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		vals = append(vals, encodeValue(class, col, fields[col]))
	}

	query := psql.Insert(ident(table)).
		Columns(append(quoteAll(cols), "ident")...).
		Values(append(vals, uuid.New())...).
		Suffix("RETURNING " + selectList(class))

	return s.one(ctx, class, query, table)
}

// Update sets the given columns and bumps updated_at.
func (s *Store) Update(ctx context.Context, ref domain.Ref, set map[string]any) (*domain.Record, error) {
	class, err := s.reg.Class(ref.Table)
	if err != nil {
		return nil, err
	}

	query := psql.Update(ident(ref.Table)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": ref.ID}).
		Suffix("RETURNING " + selectList(class))
	for _, col := range sortedKeys(set) {
		query = query.Set(ident(col), encodeValue(class, col, set[col]))
	}

	return s.one(ctx, class, query, ref.String())
}

// SoftDelete stamps a live record with now() and actor. now() is the
// transaction start time, so every row deleted in one transaction shares
// the same stamp. Returns domain.ErrNotFound if the row is missing or
// already deleted.
func (s *Store) SoftDelete(ctx context.Context, ref domain.Ref, actor uuid.UUID) (*domain.Record, error) {
	class, err := s.reg.Class(ref.Table)
	if err != nil {
		return nil, err
	}

	query := psql.Update(ident(ref.Table)).
		Set("deleted_at", sq.Expr("now()")).
		Set("deleted_by", actor).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": ref.ID}).
		Where(sq.Eq{"deleted_at": nil}).
		Suffix("RETURNING " + selectList(class))

	return s.one(ctx, class, query, ref.String())
}

// Restore clears the soft-delete stamp of a deleted record.
func (s *Store) Restore(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	class, err := s.reg.Class(ref.Table)
	if err != nil {
		return nil, err
	}

	query := psql.Update(ident(ref.Table)).
		Set("deleted_at", nil).
		Set("deleted_by", nil).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": ref.ID}).
		Where(sq.NotEq{"deleted_at": nil}).
		Suffix("RETURNING " + selectList(class))

	return s.one(ctx, class, query, ref.String())
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns a record, live or deleted.
func (s *Store) Get(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	return s.get(ctx, ref, false)
}

// GetForUpdate returns a record and locks its row until the transaction ends.
func (s *Store) GetForUpdate(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
	return s.get(ctx, ref, true)
}

func (s *Store) get(ctx context.Context, ref domain.Ref, lock bool) (*domain.Record, error) {
	class, err := s.reg.Class(ref.Table)
	if err != nil {
		return nil, err
	}

	query := psql.Select(selectList(class)).
		From(ident(ref.Table)).
		Where(sq.Eq{"id": ref.ID})
	if lock {
		query = query.Suffix("FOR UPDATE")
	}

	return s.one(ctx, class, query, ref.String())
}

// Children returns the child rows of parentID through rel, ordered by id.
// With a nil stamp only live rows are returned; otherwise only rows deleted
// with exactly that stamp. lock takes row locks in id order.
func (s *Store) Children(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error) {
	class, err := s.reg.Class(rel.Child)
	if err != nil {
		return nil, err
	}

	query := psql.Select(selectList(class)).
		From(ident(rel.Child)).
		Where(sq.Eq{ident(rel.ForeignKey): parentID}).
		OrderBy("id")
	if stamp == nil {
		query = query.Where(sq.Eq{"deleted_at": nil})
	} else {
		query = query.Where(sq.Eq{"deleted_at": stamp.At, "deleted_by": stamp.By})
	}
	if lock {
		query = query.Suffix("FOR UPDATE")
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s children query: %w", rel.Child, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, rel.Child)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgres.MapError(err, rel.Child)
	}

	records := make([]*domain.Record, len(maps))
	for i, m := range maps {
		rec, err := toRecord(rel.Child, m)
		if err != nil {
			return nil, err
		}
		records[i] = rec
	}
	return records, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type sqlizer interface {
	ToSql() (string, []any, error)
}

func (s *Store) one(ctx context.Context, class *entity.Class, query sqlizer, op string) (*domain.Record, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", class.Table, err)
	}

	rows, err := postgres.QuerierFromCtx(ctx, s.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, postgres.MapError(err, op)
	}
	return toRecord(class.Table, m)
}

func selectList(class *entity.Class) string {
	return strings.Join(quoteAll(class.SelectColumns()), ", ")
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ident(n)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
