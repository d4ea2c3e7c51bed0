package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExportSnapshot is a point-in-time JSON copy of a report handed to an
// external renderer. Result stays false until the renderer reports back.
type ExportSnapshot struct {
	ID          int64
	Key         string
	ReportTable string
	ReportID    int64
	Data        json.RawMessage
	Result      bool
	Log         *string
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
	FinalizedAt *time.Time
}

// Finalized reports whether MarkSnapshotResult has already been applied.
func (s *ExportSnapshot) Finalized() bool { return s.FinalizedAt != nil }
