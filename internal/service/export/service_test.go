package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

//go:generate moq -out record_reader_mock_test.go -pkg export . recordReader
//go:generate moq -out snapshot_repo_mock_test.go -pkg export . snapshotRepo
//go:generate moq -out tx_manager_mock_test.go -pkg export . txManager
//go:generate moq -out publisher_mock_test.go -pkg export . publisher

type testDeps struct {
	records   *recordReaderMock
	snapshots *snapshotRepoMock
	tx        *txManagerMock
	pub       *publisherMock
	report    *domain.Record
	children  map[string][]*domain.Record
}

func newTestService(t *testing.T, status string) (*Service, *testDeps) {
	t.Helper()

	machines, err := workflow.Load(config.WorkflowConfig{})
	if err != nil {
		t.Fatalf("load workflows: %v", err)
	}

	d := &testDeps{
		report: &domain.Record{
			Table:     entity.TableReports,
			ID:        1,
			Ident:     uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000001"),
			CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			Fields:    map[string]any{"patient_id": "POG1", "template_id": int64(3), "status": status},
		},
		children: map[string][]*domain.Record{
			entity.TableSmallMutations: {
				{Table: entity.TableSmallMutations, ID: 10, Ident: uuid.New(), Fields: map[string]any{"report_id": int64(1), "gene": "TP53"}},
			},
			entity.TableKBMatches: {
				{Table: entity.TableKBMatches, ID: 20, Ident: uuid.New(), Fields: map[string]any{"report_id": int64(1), "category": "therapeutic"}},
			},
		},
	}
	d.records = &recordReaderMock{
		GetFunc: func(ctx context.Context, ref domain.Ref) (*domain.Record, error) {
			if ref != d.report.Ref() {
				return nil, fmt.Errorf("%s: %w", ref, domain.ErrNotFound)
			}
			return d.report, nil
		},
		ChildrenFunc: func(ctx context.Context, rel entity.Relation, parentID int64, stamp *domain.DeletionStamp, lock bool) ([]*domain.Record, error) {
			return d.children[rel.Child], nil
		},
	}
	d.snapshots = &snapshotRepoMock{
		InsertFunc: func(ctx context.Context, s domain.ExportSnapshot) (domain.ExportSnapshot, error) {
			s.ID = int64(len(d.snapshots.InsertCalls()))
			return s, nil
		},
	}
	d.tx = &txManagerMock{
		RunInSnapshotTxFunc: func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	}
	d.pub = &publisherMock{
		PublishSnapshotFunc: func(ctx context.Context, s domain.ExportSnapshot) error { return nil },
	}

	keys := NewKeyGenerator("test")
	keys.now = fixedClock(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))
	svc := NewService(slog.Default(), entity.Default(), d.records, d.snapshots, machines, d.tx, keys, d.pub, 25)
	return svc, d
}

func TestSnapshot_CopiesLiveData(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t, "reviewed")
	actor := uuid.New()

	snap, err := svc.Snapshot(context.Background(), SnapshotInput{ReportID: 1, ActorID: actor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Result || snap.Finalized() {
		t.Error("new snapshot must be unfinalized with result=false")
	}
	if snap.CreatedBy != actor || snap.ReportTable != entity.TableReports || snap.ReportID != 1 {
		t.Errorf("snapshot: %+v", snap)
	}

	var doc struct {
		Ident    string                      `json:"ident"`
		Status   string                      `json:"status"`
		Children map[string][]map[string]any `json:"children"`
	}
	if err := json.Unmarshal(snap.Data, &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if doc.Ident != d.report.Ident.String() || doc.Status != "reviewed" {
		t.Errorf("report document: %+v", doc)
	}
	if len(doc.Children[entity.TableSmallMutations]) != 1 || len(doc.Children[entity.TableKBMatches]) != 1 {
		t.Errorf("children: %v", doc.Children)
	}
	if got, ok := doc.Children[entity.TableImages]; !ok || len(got) != 0 {
		t.Errorf("empty relation should be an empty list, got %v", got)
	}

	for _, c := range d.records.ChildrenCalls() {
		if c.Stamp != nil || c.Lock {
			t.Errorf("children read must be live and unlocked: %+v", c)
		}
	}
	if len(d.pub.PublishSnapshotCalls()) != 1 {
		t.Error("snapshot should be published")
	}
}

// Two snapshots of one report in the same clock tick get distinct keys.
func TestSnapshot_SameTickDistinctKeys(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, "ready")
	in := SnapshotInput{ReportID: 1, ActorID: uuid.New()}

	a, err := svc.Snapshot(context.Background(), in)
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	b, err := svc.Snapshot(context.Background(), in)
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if a.Key == b.Key {
		t.Fatalf("keys collide: %s", a.Key)
	}
}

func TestSnapshot_NotExportable(t *testing.T) {
	t.Parallel()

	t.Run("nonproduction", func(t *testing.T) {
		t.Parallel()
		svc, d := newTestService(t, "nonproduction")

		_, err := svc.Snapshot(context.Background(), SnapshotInput{ReportID: 1, ActorID: uuid.New()})
		if !errors.Is(err, domain.ErrReportNotExportable) {
			t.Fatalf("expected ErrReportNotExportable, got: %v", err)
		}
		if len(d.snapshots.InsertCalls()) != 0 {
			t.Error("nothing should be stored")
		}
	})

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		svc, d := newTestService(t, "reviewed")
		at, by := time.Now(), uuid.New()
		d.report.DeletedAt, d.report.DeletedBy = &at, &by

		_, err := svc.Snapshot(context.Background(), SnapshotInput{ReportID: 1, ActorID: uuid.New()})
		if !errors.Is(err, domain.ErrReportNotExportable) {
			t.Fatalf("expected ErrReportNotExportable, got: %v", err)
		}
	})
}

func TestSnapshot_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing report", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t, "ready")
		_, err := svc.Snapshot(context.Background(), SnapshotInput{ReportID: 2, ActorID: uuid.New()})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})

	t.Run("child table", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t, "ready")
		_, err := svc.Snapshot(context.Background(), SnapshotInput{Table: entity.TableImages, ReportID: 1, ActorID: uuid.New()})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got: %v", err)
		}
	})

	t.Run("publish failure keeps snapshot", func(t *testing.T) {
		t.Parallel()
		svc, d := newTestService(t, "ready")
		d.pub.PublishSnapshotFunc = func(ctx context.Context, s domain.ExportSnapshot) error {
			return errors.New("broker down")
		}
		snap, err := svc.Snapshot(context.Background(), SnapshotInput{ReportID: 1, ActorID: uuid.New()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if snap.Key == "" {
			t.Error("snapshot should be returned")
		}
	})
}

func TestMarkSnapshotResult(t *testing.T) {
	t.Parallel()

	t.Run("finalizes", func(t *testing.T) {
		t.Parallel()
		svc, d := newTestService(t, "ready")
		d.snapshots.FinalizeFunc = func(ctx context.Context, key string, success bool, log *string) (domain.ExportSnapshot, error) {
			now := time.Now()
			return domain.ExportSnapshot{Key: key, Result: success, Log: log, FinalizedAt: &now}, nil
		}
		msg := "rendered 12 pages"

		err := svc.MarkSnapshotResult(context.Background(), MarkResultInput{Key: "k", Success: true, Log: &msg})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		call := d.snapshots.FinalizeCalls()[0]
		if call.Key != "k" || !call.Success || *call.Log != msg {
			t.Errorf("finalize call: %+v", call)
		}
	})

	t.Run("second call conflicts", func(t *testing.T) {
		t.Parallel()
		svc, d := newTestService(t, "ready")
		d.snapshots.FinalizeFunc = func(ctx context.Context, key string, success bool, log *string) (domain.ExportSnapshot, error) {
			return domain.ExportSnapshot{}, fmt.Errorf("export snapshot %s already finalized: %w", key, domain.ErrConflict)
		}
		err := svc.MarkSnapshotResult(context.Background(), MarkResultInput{Key: "k"})
		if !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("expected ErrConflict, got: %v", err)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		svc, d := newTestService(t, "ready")
		err := svc.MarkSnapshotResult(context.Background(), MarkResultInput{})
		if !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation, got: %v", err)
		}
		if len(d.snapshots.FinalizeCalls()) != 0 {
			t.Error("store should not be called")
		}
	})
}

func TestPending_DefaultLimit(t *testing.T) {
	t.Parallel()

	svc, d := newTestService(t, "ready")
	d.snapshots.PendingFunc = func(ctx context.Context, limit int) ([]domain.ExportSnapshot, error) {
		return nil, nil
	}

	if _, err := svc.Pending(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Pending(context.Background(), 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	calls := d.snapshots.PendingCalls()
	if calls[0].Limit != 25 || calls[1].Limit != 5 {
		t.Errorf("limits: %d, %d", calls[0].Limit, calls[1].Limit)
	}
}
