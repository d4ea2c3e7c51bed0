package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ref addresses a single record of an entity class.
type Ref struct {
	Table string
	ID    int64
}

func (r Ref) String() string { return fmt.Sprintf("%s %d", r.Table, r.ID) }

// Record is a row of any registered entity class. The system columns are
// lifted into fields; class-specific columns live in Fields keyed by
// column name.
type Record struct {
	Table     string
	ID        int64
	Ident     uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	DeletedBy *uuid.UUID
	Fields    map[string]any
}

// Ref returns the address of the record.
func (r *Record) Ref() Ref { return Ref{Table: r.Table, ID: r.ID} }

// IsDeleted reports whether the record is soft-deleted.
func (r *Record) IsDeleted() bool { return r.DeletedAt != nil }

// Status returns the workflow state of the record, or "" if the class has
// no status column.
func (r *Record) Status() string {
	s, _ := r.Fields["status"].(string)
	return s
}

// Int64 returns the integer value of column col.
func (r *Record) Int64(col string) (int64, bool) {
	return AsInt64(r.Fields[col])
}

// AsInt64 converts the integer representations produced by pgx and
// encoding/json into int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case int16:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

// RemovalState is the previous/new payload of remove and restore audit
// entries.
func RemovalState(deletedAt *time.Time, deletedBy *uuid.UUID) map[string]any {
	state := map[string]any{"deletedAt": nil, "deletedBy": nil}
	if deletedAt != nil {
		state["deletedAt"] = deletedAt.UTC()
	}
	if deletedBy != nil {
		state["deletedBy"] = deletedBy.String()
	}
	return state
}

// DeletionStamp identifies one soft-delete cascade: every row deleted by
// the same call carries the same deleted_at and deleted_by.
type DeletionStamp struct {
	At time.Time
	By uuid.UUID
}

// Stamp returns the deletion stamp of a deleted record, or nil.
func (r *Record) Stamp() *DeletionStamp {
	if r.DeletedAt == nil || r.DeletedBy == nil {
		return nil
	}
	return &DeletionStamp{At: *r.DeletedAt, By: *r.DeletedBy}
}
