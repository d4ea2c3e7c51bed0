package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/domain"
	"github.com/heartmarshall/genomic-reports/internal/service/export"
)

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type resultHandler interface {
	MarkSnapshotResult(ctx context.Context, input export.MarkResultInput) error
}

// ResultConsumer applies renderer results to snapshots. Offsets are
// committed only after a result is applied or rejected as final.
type ResultConsumer struct {
	reader  messageReader
	handler resultHandler
	log     *slog.Logger
}

// NewResultConsumer creates a consumer-group reader on the result topic.
func NewResultConsumer(log *slog.Logger, cfg config.KafkaConfig, handler resultHandler) *ResultConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.ResultTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &ResultConsumer{
		reader:  reader,
		handler: handler,
		log:     log.With("component", "snapshot_results"),
	}
}

// Run consumes until ctx is cancelled.
func (c *ResultConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.apply(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// apply handles one message. Malformed events and results that can never
// apply are logged and skipped; storage failures are retried with backoff
// until they succeed or ctx ends.
func (c *ResultConsumer) apply(ctx context.Context, msg kafka.Message) error {
	var ev ResultEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.log.WarnContext(ctx, "skipping malformed result event",
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		return nil
	}

	backoff := minBackoff
	for {
		err := c.handler.MarkSnapshotResult(ctx, export.MarkResultInput{Key: ev.Key, Success: ev.Success, Log: ev.Log})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrStorageUnavailable):
			c.log.WarnContext(ctx, "snapshot result not applied, retrying",
				slog.String("key", ev.Key),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()),
			)
		default:
			c.log.WarnContext(ctx, "snapshot result rejected",
				slog.String("key", ev.Key),
				slog.String("kind", domain.KindOf(err)),
				slog.String("error", err.Error()),
			)
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

// Close closes the reader.
func (c *ResultConsumer) Close() error {
	return c.reader.Close()
}
