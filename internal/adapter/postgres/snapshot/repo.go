// Package snapshot implements export snapshot persistence.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/domain"
)

const snapshotColumns = `id, key, report_table, report_id, data, result, log, created_by, created_at, finalized_at`

const insertSQL = `
INSERT INTO export_snapshots (key, report_table, report_id, data, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + snapshotColumns

const getByKeySQL = `SELECT ` + snapshotColumns + ` FROM export_snapshots WHERE key = $1`

const finalizeSQL = `
UPDATE export_snapshots
SET result = $2, log = $3, finalized_at = now()
WHERE key = $1 AND finalized_at IS NULL
RETURNING ` + snapshotColumns

const pendingSQL = `
SELECT ` + snapshotColumns + `
FROM export_snapshots
WHERE finalized_at IS NULL
ORDER BY created_at, id
LIMIT $1`

// Repo provides snapshot persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new snapshot repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores a new, unfinalized snapshot.
func (r *Repo) Insert(ctx context.Context, s domain.ExportSnapshot) (domain.ExportSnapshot, error) {
	var row snapshotRow
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, insertSQL,
		s.Key, s.ReportTable, s.ReportID, []byte(s.Data), s.CreatedBy)
	if err != nil {
		return domain.ExportSnapshot{}, postgres.MapError(err, "export snapshot "+s.Key)
	}
	return row.toDomain(), nil
}

// GetByKey returns the snapshot stored under key.
func (r *Repo) GetByKey(ctx context.Context, key string) (domain.ExportSnapshot, error) {
	var row snapshotRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getByKeySQL, key); err != nil {
		return domain.ExportSnapshot{}, postgres.MapError(err, "export snapshot "+key)
	}
	return row.toDomain(), nil
}

// Finalize records the renderer's outcome. It succeeds exactly once per
// key: a missing key is domain.ErrNotFound, a finalized one domain.ErrConflict.
func (r *Repo) Finalize(ctx context.Context, key string, success bool, log *string) (domain.ExportSnapshot, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var row snapshotRow
	err := pgxscan.Get(ctx, q, &row, finalizeSQL, key, success, log)
	if err == nil {
		return row.toDomain(), nil
	}
	if !pgxscan.NotFound(err) {
		return domain.ExportSnapshot{}, postgres.MapError(err, "finalize export snapshot "+key)
	}

	if _, err := r.GetByKey(ctx, key); err != nil {
		return domain.ExportSnapshot{}, err
	}
	return domain.ExportSnapshot{}, fmt.Errorf("export snapshot %s already finalized: %w", key, domain.ErrConflict)
}

// Pending returns unfinalized snapshots, oldest first.
func (r *Repo) Pending(ctx context.Context, limit int) ([]domain.ExportSnapshot, error) {
	if limit <= 0 {
		return nil, errors.New("pending snapshots: limit must be positive")
	}

	var rows []snapshotRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, pendingSQL, limit); err != nil {
		return nil, postgres.MapError(err, "pending export snapshots")
	}

	out := make([]domain.ExportSnapshot, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

type snapshotRow struct {
	ID          int64      `db:"id"`
	Key         string     `db:"key"`
	ReportTable string     `db:"report_table"`
	ReportID    int64      `db:"report_id"`
	Data        []byte     `db:"data"`
	Result      bool       `db:"result"`
	Log         *string    `db:"log"`
	CreatedBy   uuid.UUID  `db:"created_by"`
	CreatedAt   time.Time  `db:"created_at"`
	FinalizedAt *time.Time `db:"finalized_at"`
}

func (row snapshotRow) toDomain() domain.ExportSnapshot {
	return domain.ExportSnapshot{
		ID:          row.ID,
		Key:         row.Key,
		ReportTable: row.ReportTable,
		ReportID:    row.ReportID,
		Data:        row.Data,
		Result:      row.Result,
		Log:         row.Log,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		FinalizedAt: row.FinalizedAt,
	}
}
