// Package queue hands export snapshots to the external renderer and
// consumes the renderer's results.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SnapshotEvent is published once per committed snapshot.
type SnapshotEvent struct {
	Key         string          `json:"key"`
	ReportTable string          `json:"report_table"`
	ReportID    int64           `json:"report_id"`
	CreatedBy   uuid.UUID       `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	Data        json.RawMessage `json:"data"`
}

// ResultEvent is the renderer's outcome for one snapshot key.
type ResultEvent struct {
	Key     string  `json:"key"`
	Success bool    `json:"success"`
	Log     *string `json:"log,omitempty"`
}
