package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Export   ExportConfig   `yaml:"export"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// ServerConfig holds settings of the operational HTTP server (health and metrics).
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	SkipMigrations  bool          `yaml:"skip_migrations"    env:"DATABASE_SKIP_MIGRATIONS"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// WorkflowConfig names transition table files that replace the embedded
// defaults. Empty paths keep the defaults.
type WorkflowConfig struct {
	ReportTablePath   string `yaml:"report_table_path"   env:"WORKFLOW_REPORT_TABLE_PATH"`
	GermlineTablePath string `yaml:"germline_table_path" env:"WORKFLOW_GERMLINE_TABLE_PATH"`
}

// ExportConfig holds snapshot settings.
type ExportConfig struct {
	// NodeID disambiguates snapshot keys across processes. Generated at
	// startup when empty.
	NodeID       string `yaml:"node_id"       env:"EXPORT_NODE_ID"`
	PendingLimit int    `yaml:"pending_limit" env:"EXPORT_PENDING_LIMIT" env-default:"100"`
}

// KafkaConfig holds the snapshot hand-off settings. Empty Brokers disables
// publishing and the result consumer.
type KafkaConfig struct {
	BrokersRaw    string        `yaml:"brokers"        env:"KAFKA_BROKERS"`
	SnapshotTopic string        `yaml:"snapshot_topic" env:"KAFKA_SNAPSHOT_TOPIC" env-default:"report-snapshots"`
	ResultTopic   string        `yaml:"result_topic"   env:"KAFKA_RESULT_TOPIC"   env-default:"report-snapshot-results"`
	GroupID       string        `yaml:"group_id"       env:"KAFKA_GROUP_ID"       env-default:"report-lifecycle"`
	WriteTimeout  time.Duration `yaml:"write_timeout"  env:"KAFKA_WRITE_TIMEOUT"  env-default:"10s"`

	// Brokers is parsed from BrokersRaw during validation.
	Brokers []string `yaml:"-" env:"-"`
}

// Enabled reports whether Kafka hand-off is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }
