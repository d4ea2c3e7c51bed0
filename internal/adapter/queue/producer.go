package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/heartmarshall/genomic-reports/internal/config"
	"github.com/heartmarshall/genomic-reports/internal/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes snapshot events keyed by snapshot key.
type Producer struct {
	writer  messageWriter
	brokers []string
	timeout time.Duration
}

// NewProducer creates a synchronous producer for the snapshot topic.
func NewProducer(cfg config.KafkaConfig) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.SnapshotTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			WriteTimeout: cfg.WriteTimeout,
		},
		brokers: cfg.Brokers,
		timeout: cfg.WriteTimeout,
	}
}

// Ping dials the first reachable broker. It backs the kafka health check.
func (p *Producer) Ping(ctx context.Context) error {
	var lastErr error
	for _, addr := range p.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	if lastErr == nil {
		return errors.New("no brokers configured")
	}
	return fmt.Errorf("dial kafka: %w", lastErr)
}

// PublishSnapshot writes one SnapshotEvent.
func (p *Producer) PublishSnapshot(ctx context.Context, s domain.ExportSnapshot) error {
	value, err := json.Marshal(SnapshotEvent{
		Key:         s.Key,
		ReportTable: s.ReportTable,
		ReportID:    s.ReportID,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		Data:        s.Data,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot event %s: %w", s.Key, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(s.Key),
		Value: value,
		Time:  time.Now(),
	}); err != nil {
		return fmt.Errorf("publish snapshot event %s: %w", s.Key, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
