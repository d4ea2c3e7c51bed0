// Command republish re-sends unfinalized export snapshots to the renderer
// topic. Snapshots whose publish failed after commit stay pending until a
// result arrives; this command is intended to be invoked by an external
// cron job to hand them off again.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/genomic-reports/internal/adapter/postgres"
	"github.com/heartmarshall/genomic-reports/internal/adapter/queue"
	"github.com/heartmarshall/genomic-reports/internal/app"
	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/workflow"
)

func main() {
	limit := flag.Int("limit", 0, "maximum snapshots to re-send (0 = configured pending limit)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	if !cfg.Kafka.Enabled() {
		logger.Error("kafka brokers are not configured")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	machines, err := workflow.Load(cfg.Workflow)
	if err != nil {
		logger.Error("load transition tables", slog.String("error", err.Error()))
		os.Exit(1)
	}

	producer := queue.NewProducer(cfg.Kafka)
	defer producer.Close() //nolint:errcheck

	core := app.NewCore(logger, pool, machines, cfg.Export, nil)

	pending, err := core.Export.Pending(ctx, *limit)
	if err != nil {
		logger.Error("list pending snapshots", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var sent int
	for _, snap := range pending {
		if err := producer.PublishSnapshot(ctx, snap); err != nil {
			logger.Error("republish failed",
				slog.String("key", snap.Key),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		sent++
	}

	logger.Info("republish completed",
		slog.Int("pending", len(pending)),
		slog.Int("sent", sent),
	)
}
