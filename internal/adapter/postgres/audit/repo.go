// Package audit implements the append-only change-history repository.
// Rows are never updated or deleted; a trigger in the schema rejects both.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/domain"
)

const entryColumns = `id, ident, type, table_name, entry_id, scope_table, scope_id, previous, new, actor_id, comment, created_at`

const insertSQL = `
INSERT INTO audit_entries (ident, type, table_name, entry_id, scope_table, scope_id, previous, new, actor_id, comment)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + entryColumns

const historySQL = `
SELECT ` + entryColumns + `
FROM audit_entries
WHERE table_name = $1 AND entry_id = $2
ORDER BY created_at, id`

const getSQL = `
SELECT ` + entryColumns + `
FROM audit_entries
WHERE id = $1`

const scopeHistorySQL = `
SELECT ` + entryColumns + `
FROM audit_entries
WHERE scope_table = $1 AND scope_id = $2
ORDER BY created_at, id`

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new audit repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Record appends an entry within the caller's transaction. Any storage
// failure is reported as domain.ErrStorageUnavailable so the caller's unit
// of work aborts.
func (r *Repo) Record(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error) {
	if err := validateEntry(entry); err != nil {
		return domain.AuditEntry{}, err
	}

	prev, err := marshalState(entry.Previous)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("audit_entry marshal previous: %w", err)
	}
	next, err := marshalState(entry.New)
	if err != nil {
		return domain.AuditEntry{}, fmt.Errorf("audit_entry marshal new: %w", err)
	}

	ident := entry.Ident
	if ident == uuid.Nil {
		ident = uuid.New()
	}

	var row entryRow
	err = pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, insertSQL,
		ident, string(entry.Type), entry.Table, entry.EntryID,
		entry.ScopeTable, entry.ScopeID, prev, next, entry.ActorID, entry.Comment,
	)
	if err != nil {
		return domain.AuditEntry{}, storageError("record audit entry", err)
	}

	return row.toDomain()
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Get returns one entry by its id.
func (r *Repo) Get(ctx context.Context, id int64) (domain.AuditEntry, error) {
	var row entryRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getSQL, id); err != nil {
		return domain.AuditEntry{}, postgres.MapError(err, fmt.Sprintf("audit_entry %d", id))
	}
	return row.toDomain()
}

// History returns every entry of one record ordered by created_at, id.
func (r *Repo) History(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error) {
	return r.list(ctx, historySQL, table, entryID)
}

// ScopeHistory returns every entry whose scope is the given top-level
// record, covering the record and all of its children.
func (r *Repo) ScopeHistory(ctx context.Context, scopeTable string, scopeID int64) ([]domain.AuditEntry, error) {
	return r.list(ctx, scopeHistorySQL, scopeTable, scopeID)
}

func (r *Repo) list(ctx context.Context, query, table string, id int64) ([]domain.AuditEntry, error) {
	var rows []entryRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, table, id); err != nil {
		return nil, postgres.MapError(err, fmt.Sprintf("audit history %s %d", table, id))
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		e, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

type entryRow struct {
	ID         int64     `db:"id"`
	Ident      uuid.UUID `db:"ident"`
	Type       string    `db:"type"`
	TableName  string    `db:"table_name"`
	EntryID    int64     `db:"entry_id"`
	ScopeTable string    `db:"scope_table"`
	ScopeID    int64     `db:"scope_id"`
	Previous   []byte    `db:"previous"`
	New        []byte    `db:"new"`
	ActorID    uuid.UUID `db:"actor_id"`
	Comment    string    `db:"comment"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row entryRow) toDomain() (domain.AuditEntry, error) {
	e := domain.AuditEntry{
		ID:         row.ID,
		Ident:      row.Ident,
		Type:       domain.AuditType(row.Type),
		Table:      row.TableName,
		EntryID:    row.EntryID,
		ScopeTable: row.ScopeTable,
		ScopeID:    row.ScopeID,
		ActorID:    row.ActorID,
		Comment:    row.Comment,
		CreatedAt:  row.CreatedAt,
	}

	var err error
	if e.Previous, err = unmarshalState(row.Previous); err != nil {
		return domain.AuditEntry{}, fmt.Errorf("audit_entry %d unmarshal previous: %w", row.ID, err)
	}
	if e.New, err = unmarshalState(row.New); err != nil {
		return domain.AuditEntry{}, fmt.Errorf("audit_entry %d unmarshal new: %w", row.ID, err)
	}
	return e, nil
}

// marshalState encodes a payload; nil maps become SQL NULL.
func marshalState(state map[string]any) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

func unmarshalState(b []byte) (map[string]any, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	state := make(map[string]any)
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, err
	}
	return state, nil
}

func validateEntry(e domain.AuditEntry) error {
	var errs []domain.FieldError
	if !e.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: fmt.Sprintf("unknown audit type %q", e.Type)})
	}
	if e.Table == "" {
		errs = append(errs, domain.FieldError{Field: "table", Message: "required"})
	}
	if e.EntryID <= 0 {
		errs = append(errs, domain.FieldError{Field: "entryId", Message: "required"})
	}
	if e.ScopeTable == "" || e.ScopeID <= 0 {
		errs = append(errs, domain.FieldError{Field: "scope", Message: "required"})
	}
	if e.ActorID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "actorId", Message: "required"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// storageError keeps context cancellation intact and reports every other
// failure as storage unavailability.
func storageError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
