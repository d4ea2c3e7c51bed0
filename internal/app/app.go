package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/adapter/queue"
	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/transport/rest"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

// Run is the application entry point. It loads configuration, connects to
// the database, applies migrations, loads the transition tables, wires the
// core and serves the ops endpoints plus the snapshot result consumer
// until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.SkipMigrations {
		logger.Warn("skipping migrations")
	} else if err := Migrate(ctx, pool, logger); err != nil {
		return err
	}

	machines, err := workflow.Load(cfg.Workflow)
	if err != nil {
		return fmt.Errorf("load transition tables: %w", err)
	}
	details := make(map[string]string)
	for table, version := range machines.Versions() {
		logger.Info("transition table loaded", slog.String("table", table), slog.Int("version", version))
		details["workflow."+table] = strconv.Itoa(version)
	}

	var (
		pub      snapshotPublisher
		producer *queue.Producer
	)
	if cfg.Kafka.Enabled() {
		producer = queue.NewProducer(cfg.Kafka)
		defer producer.Close() //nolint:errcheck
		pub = producer
	} else {
		logger.Info("kafka disabled, snapshots are served by polling")
	}

	core := NewCore(logger, pool, machines, cfg.Export, pub)

	checks := []rest.Check{databaseCheck(pool)}
	if producer != nil {
		checks = append(checks, rest.Check{Name: "kafka", Ping: producer.Ping})
	}
	health := rest.NewHealthHandler(BuildVersion(), details, checks...)
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      rest.NewRouter(logger, health),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("ops server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Kafka.Enabled() {
		consumer := queue.NewResultConsumer(logger, cfg.Kafka, core.Export)
		g.Go(func() error {
			defer consumer.Close() //nolint:errcheck
			return consumer.Run(gctx)
		})
	}

	return g.Wait()
}

func databaseCheck(pool *pgxpool.Pool) rest.Check {
	return rest.Check{Name: "database", Critical: true, Ping: pool.Ping}
}
