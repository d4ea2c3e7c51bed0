package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns (%d) must not exceed max_conns (%d)", c.Database.MinConns, c.Database.MaxConns)
	}

	if !validLogLevels[strings.ToLower(strings.TrimSpace(c.Log.Level))] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}

	if c.Export.PendingLimit <= 0 {
		return fmt.Errorf("export.pending_limit must be > 0 (got %d)", c.Export.PendingLimit)
	}

	if err := c.Kafka.validate(); err != nil {
		return fmt.Errorf("kafka: %w", err)
	}

	return nil
}

func (k *KafkaConfig) validate() error {
	brokers, err := ParseBrokers(k.BrokersRaw)
	if err != nil {
		return fmt.Errorf("brokers: %w", err)
	}
	k.Brokers = brokers

	if k.Enabled() {
		if k.SnapshotTopic == "" {
			return fmt.Errorf("snapshot_topic is required when brokers are set")
		}
		if k.ResultTopic == "" {
			return fmt.Errorf("result_topic is required when brokers are set")
		}
	}
	return nil
}

// ParseBrokers parses a comma-separated list of host:port addresses.
// An empty string returns a nil slice.
func ParseBrokers(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.Contains(p, ":") {
			return nil, fmt.Errorf("invalid broker %q: expected host:port", p)
		}
		brokers = append(brokers, p)
	}
	return brokers, nil
}
