package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres/audit"
	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres/guard"
	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres/record"
	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres/snapshot"
	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/entity"
	"github.com/heartmarshall/genomic-reports/internal/service/export"
	"github.com/heartmarshall/genomic-reports/internal/service/history"
	"github.com/heartmarshall/genomic-reports/internal/service/lifecycle"
	"github.com/heartmarshall/genomic-reports/internal/service/records"
	"github.com/heartmarshall/genomic-reports/internal/service/uniqueness"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

// Core bundles the lifecycle services for the request-handling layer.
type Core struct {
	Records   *records.Service
	Lifecycle *lifecycle.Service
	History   *history.Service
	Export    *export.Service
}

// snapshotPublisher is implemented by queue.Producer.
type snapshotPublisher interface {
	PublishSnapshot(ctx context.Context, s domain.ExportSnapshot) error
}

// NewCore wires repositories and services over one pool. A nil pub leaves
// renderers polling for pending snapshots.
func NewCore(
	logger *slog.Logger,
	pool *pgxpool.Pool,
	machines *workflow.Machines,
	cfg config.ExportConfig,
	pub snapshotPublisher,
) *Core {
	reg := entity.Default()
	txm := postgres.NewTxManager(pool)

	store := record.New(pool, reg)
	auditRepo := audit.New(pool)
	enforcer := uniqueness.NewEnforcer(reg, guard.New(pool))
	snapshots := snapshot.New(pool)
	keys := export.NewKeyGenerator(cfg.NodeID)

	logger.Info("export node", slog.String("node_id", keys.Node()))

	return &Core{
		Records:   records.NewService(logger, reg, store, auditRepo, enforcer, machines, txm),
		Lifecycle: lifecycle.NewService(logger, reg, store, auditRepo, machines, txm),
		History:   history.NewService(logger, reg, auditRepo),
		Export:    export.NewService(logger, reg, store, snapshots, machines, txm, keys, pub, cfg.PendingLimit),
	}
}
