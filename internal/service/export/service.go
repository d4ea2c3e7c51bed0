// Package export takes immutable JSON snapshots of reports for external
// rendering and records the renderer's outcome.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/metrics"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

type recordReader interface {
	Get(ctx context.Context, ref domain.Ref) (*domain.Record, error)
	Children(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error)
}

type snapshotRepo interface {
	Insert(ctx context.Context, s domain.ExportSnapshot) (domain.ExportSnapshot, error)
	Finalize(ctx context.Context, key string, success bool, log *string) (domain.ExportSnapshot, error)
	Pending(ctx context.Context, limit int) ([]domain.ExportSnapshot, error)
}

type workflows interface {
	For(table string) (*workflow.Table, error)
}

type txManager interface {
	RunInSnapshotTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// publisher hands a committed snapshot to the renderer.
type publisher interface {
	PublishSnapshot(ctx context.Context, s domain.ExportSnapshot) error
}

// Service creates export snapshots.
type Service struct {
	reg          *entity.Registry
	records      recordReader
	snapshots    snapshotRepo
	workflows    workflows
	tx           txManager
	keys         *KeyGenerator
	pub          publisher
	pendingLimit int
	log          *slog.Logger
}

// NewService creates a new export service. pub may be nil, in which case
// renderers poll Pending.
func NewService(
	log *slog.Logger,
	reg *entity.Registry,
	records recordReader,
	snapshots snapshotRepo,
	workflows workflows,
	tx txManager,
	keys *KeyGenerator,
	pub publisher,
	pendingLimit int,
) *Service {
	return &Service{
		reg:          reg,
		records:      records,
		snapshots:    snapshots,
		workflows:    workflows,
		tx:           tx,
		keys:         keys,
		pub:          pub,
		pendingLimit: pendingLimit,
		log:          log.With("service", "export"),
	}
}

// Snapshot copies the live state of a report and its live children into a
// new snapshot. All reads see one consistent view.
func (s *Service) Snapshot(ctx context.Context, input SnapshotInput) (snap *domain.ExportSnapshot, err error) {
	defer func(started time.Time) { metrics.ObserveOperation("snapshot", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return nil, err
	}
	table := input.Table
	if table == "" {
		table = entity.TableReports
	}
	class, err := s.reg.Class(table)
	if err != nil {
		return nil, err
	}
	if !class.Workflow {
		return nil, domain.NewValidationError("table", fmt.Sprintf("%s is not a report class", table))
	}
	wf, err := s.workflows.For(table)
	if err != nil {
		return nil, err
	}

	ref := domain.Ref{Table: table, ID: input.ReportID}
	err = s.tx.RunInSnapshotTx(ctx, func(txCtx context.Context) error {
		report, err := s.records.Get(txCtx, ref)
		if err != nil {
			return fmt.Errorf("get %s: %w", ref, err)
		}
		if report.IsDeleted() {
			return fmt.Errorf("%s is deleted: %w", ref, domain.ErrReportNotExportable)
		}
		if !wf.IsExportable(report.Status()) {
			return fmt.Errorf("%s in status %s: %w", ref, report.Status(), domain.ErrReportNotExportable)
		}

		doc, err := s.document(txCtx, class, report)
		if err != nil {
			return err
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode snapshot of %s: %w", ref, err)
		}

		stored, err := s.snapshots.Insert(txCtx, domain.ExportSnapshot{
			Key:         s.keys.Next(report.Ident),
			ReportTable: table,
			ReportID:    report.ID,
			Data:        data,
			CreatedBy:   input.ActorID,
		})
		if err != nil {
			return fmt.Errorf("store snapshot of %s: %w", ref, err)
		}
		snap = &stored
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "snapshot created",
		slog.String("key", snap.Key),
		slog.String("table", table),
		slog.Int64("report_id", snap.ReportID),
		slog.String("actor_id", input.ActorID.String()),
	)

	if s.pub != nil {
		if err := s.pub.PublishSnapshot(ctx, *snap); err != nil {
			s.log.WarnContext(ctx, "snapshot hand-off failed, left for polling",
				slog.String("key", snap.Key),
				slog.String("error", err.Error()),
			)
		}
	}

	return snap, nil
}

// document renders rec and, through every declared relation, its live
// descendants.
func (s *Service) document(ctx context.Context, class *entity.Class, rec *domain.Record) (map[string]any, error) {
	doc := recordDocument(class, rec)
	if len(class.Children) == 0 {
		return doc, nil
	}

	children := make(map[string]any, len(class.Children))
	for _, rel := range class.Children {
		childClass, err := s.reg.Class(rel.Child)
		if err != nil {
			return nil, err
		}
		rows, err := s.records.Children(ctx, rel, rec.ID, nil, false)
		if err != nil {
			return nil, fmt.Errorf("read %s of %s: %w", rel.Child, rec.Ref(), err)
		}
		docs := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			d, err := s.document(ctx, childClass, row)
			if err != nil {
				return nil, err
			}
			docs = append(docs, d)
		}
		children[rel.Child] = docs
	}
	doc["children"] = children
	return doc, nil
}

func recordDocument(class *entity.Class, rec *domain.Record) map[string]any {
	doc := map[string]any{
		"id":         rec.ID,
		"ident":      rec.Ident.String(),
		"created_at": rec.CreatedAt.UTC(),
		"updated_at": rec.UpdatedAt.UTC(),
	}
	for _, name := range class.ColumnNames() {
		doc[name] = rec.Fields[name]
	}
	if class.Workflow {
		doc["status"] = rec.Status()
	}
	return doc
}

// MarkSnapshotResult records the renderer's outcome. It applies once per
// key; later calls fail with domain.ErrConflict.
func (s *Service) MarkSnapshotResult(ctx context.Context, input MarkResultInput) (err error) {
	defer func(started time.Time) { metrics.ObserveOperation("mark_snapshot_result", started, err) }(time.Now())

	if err := input.Validate(); err != nil {
		return err
	}
	snap, err := s.snapshots.Finalize(ctx, input.Key, input.Success, input.Log)
	if err != nil {
		return err
	}

	metrics.SnapshotResult(input.Success)
	s.log.InfoContext(ctx, "snapshot finalized",
		slog.String("key", snap.Key),
		slog.Int64("report_id", snap.ReportID),
		slog.Bool("success", input.Success),
	)
	return nil
}

// Pending lists snapshots still waiting for a result, oldest first. A
// non-positive limit uses the configured default.
func (s *Service) Pending(ctx context.Context, limit int) ([]domain.ExportSnapshot, error) {
	if limit <= 0 {
		limit = s.pendingLimit
	}
	return s.snapshots.Pending(ctx, limit)
}
