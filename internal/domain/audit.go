package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one append-only change-history row. Previous and New hold
// only the fields that changed; Previous is nil for create entries.
type AuditEntry struct {
	ID         int64
	Ident      uuid.UUID
	Type       AuditType
	Table      string
	EntryID    int64
	ScopeTable string
	ScopeID    int64
	Previous   map[string]any
	New        map[string]any
	ActorID    uuid.UUID
	Comment    string
	CreatedAt  time.Time
}
