// Package records implements the generic record operations: create,
// mutate, reorder and the soft-delete cascade engine. Every operation runs
// in one transaction together with its uniqueness checks and audit writes.
package records

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

type recordStore interface {
	Insert(ctx context.Context, table string, fields map[string]any) (*domain.Record, error)
	Get(ctx context.Context, ref domain.Ref) (*domain.Record, error)
	GetForUpdate(ctx context.Context, ref domain.Ref) (*domain.Record, error)
	Update(ctx context.Context, ref domain.Ref, set map[string]any) (*domain.Record, error)
	SoftDelete(ctx context.Context, ref domain.Ref, actor uuid.UUID) (*domain.Record, error)
	Restore(ctx context.Context, ref domain.Ref) (*domain.Record, error)
	Children(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error)
}

type auditLog interface {
	Record(ctx context.Context, entry domain.AuditEntry) (domain.AuditEntry, error)
	Get(ctx context.Context, id int64) (domain.AuditEntry, error)
	History(ctx context.Context, table string, entryID int64) ([]domain.AuditEntry, error)
}

type enforcer interface {
	Lock(ctx context.Context, touches ...uniqueness.Touch) error
	Verify(ctx context.Context, touches ...uniqueness.Touch) error
}

type workflows interface {
	For(table string) (*workflow.Table, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service provides record lifecycle operations over every entity class.
type Service struct {
	reg       *entity.Registry
	store     recordStore
	audit     auditLog
	guard     enforcer
	workflows workflows
	tx        txManager
	log       *slog.Logger
}

// NewService creates a new records service.
func NewService(
	log *slog.Logger,
	reg *entity.Registry,
	store recordStore,
	audit auditLog,
	guard enforcer,
	workflows workflows,
	tx txManager,
) *Service {
	return &Service{
		reg:       reg,
		store:     store,
		audit:     audit,
		guard:     guard,
		workflows: workflows,
		tx:        tx,
		log:       log.With("service", "records"),
	}
}

// scopeOf resolves the top-level record owning rec, for the audit scope.
// Roots are their own scope.
func (s *Service) scopeOf(ctx context.Context, class *entity.Class, fields map[string]any, id int64) (domain.Ref, error) {
	root, err := s.reg.Root(class.Table)
	if err != nil {
		return domain.Ref{}, err
	}
	if root.Table == class.Table {
		return domain.Ref{Table: class.Table, ID: id}, nil
	}
	for {
		parentID, ok := domain.AsInt64(fields[class.ParentKey])
		if !ok {
			return domain.Ref{}, domain.NewValidationError(class.ParentKey, "required")
		}
		ref := domain.Ref{Table: class.Parent, ID: parentID}
		if ref.Table == root.Table {
			return ref, nil
		}
		rec, err := s.store.Get(ctx, ref)
		if err != nil {
			return domain.Ref{}, err
		}
		if class, err = s.reg.Class(ref.Table); err != nil {
			return domain.Ref{}, err
		}
		fields = rec.Fields
	}
}

// audited picks the columns that appear in audit payloads: user columns and
// the workflow status. Derived columns such as dedup keys are left out.
func audited(class *entity.Class, fields map[string]any) map[string]any {
	out := make(map[string]any, len(class.Columns)+1)
	for _, name := range class.ColumnNames() {
		if v, ok := fields[name]; ok {
			out[name] = v
		}
	}
	if class.Workflow {
		if v, ok := fields["status"]; ok {
			out["status"] = v
		}
	}
	return out
}

func (s *Service) record(ctx context.Context, entry domain.AuditEntry) error {
	if _, err := s.audit.Record(ctx, entry); err != nil {
		return err
	}
	return nil
}
