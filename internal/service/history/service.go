// Package history reads the audit log of records and of whole reports.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
)

type auditReader interface {
	History(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error)
	ScopeHistory(ctx context.Context, scopeTable string, scopeID int64) ([]domain.AuditEntry, error)
}

// Service lists change history.
type Service struct {
	reg   *entity.Registry
	audit auditReader
	log   *slog.Logger
}

// NewService creates a new history service.
func NewService(log *slog.Logger, reg *entity.Registry, audit auditReader) *Service {
	return &Service{
		reg:   reg,
		audit: audit,
		log:   log.With("service", "history"),
	}
}

// History returns every entry written for one record, oldest first.
// Entries of deleted records stay readable.
func (s *Service) History(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error) {
	if _, err := s.reg.Class(table); err != nil {
		return nil, err
	}
	if entryID <= 0 {
		return nil, domain.NewValidationError("entry_id", "must be positive")
	}

	entries, err := s.audit.History(ctx, table, entryID)
	if err != nil {
		return nil, fmt.Errorf("history %s %d: %w", table, entryID, err)
	}
	return entries, nil
}

// ScopeHistory returns the entries of a top-level record and of every
// record below it, oldest first.
func (s *Service) ScopeHistory(ctx context.Context, table string, id int64) ([]domain.AuditEntry, error) {
	class, err := s.reg.Class(table)
	if err != nil {
		return nil, err
	}
	if class.Parent != "" {
		return nil, domain.NewValidationError("table", fmt.Sprintf("%s is not a top-level class", table))
	}
	if id <= 0 {
		return nil, domain.NewValidationError("id", "must be positive")
	}

	entries, err := s.audit.ScopeHistory(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("scope history %s %d: %w", table, id, err)
	}

	s.log.DebugContext(ctx, "scope history listed",
		slog.String("table", table),
		slog.Int64("id", id),
		slog.Int("entries", len(entries)),
	)
	return entries, nil
}
