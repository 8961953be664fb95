package config

import "time"

// Config is the root configuration for the Atena agent.
type Config struct {
	// Catalog configures where rule catalogs are loaded from.
	Catalog CatalogConfig `yaml:"catalog"`

	// Engine configures rule evaluation behavior.
	Engine EngineConfig `yaml:"engine"`

	// Evidence configures the turn evidence audit trail.
	Evidence EvidenceConfig `yaml:"evidence"`

	// History configures conversation transcript persistence.
	History HistoryConfig `yaml:"history"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// CatalogConfig configures rule catalog loading.
type CatalogConfig struct {
	// Path is a rule catalog file or a directory of catalog files.
	Path string `yaml:"path"`

	// Watch enables hot reload when catalog files change on disk.
	Watch bool `yaml:"watch"`

	// DebounceInterval is how long to wait after a file event before
	// reloading, so editors that write in several steps trigger a
	// single reload.
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// MaxFileSize is the maximum catalog file size in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxConditionDepth limits nesting of condition combinators.
	MaxConditionDepth int `yaml:"max_condition_depth"`
}

// EngineConfig configures rule evaluation.
type EngineConfig struct {
	// SituationalBudget is the maximum number of situational rules
	// admitted into a single turn's governing set.
	SituationalBudget int `yaml:"situational_budget"`

	// MaxRules is the maximum number of rules accepted in a catalog.
	MaxRules int `yaml:"max_rules"`
}

// EvidenceConfig configures the evidence recorder and its storage.
type EvidenceConfig struct {
	// Enabled turns evidence recording on or off.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend.
	SQLite SQLiteEvidenceConfig `yaml:"sqlite"`

	// Recorder configures the async recording pipeline.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention configures automatic pruning of old records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteEvidenceConfig configures the sqlite evidence backend.
type SQLiteEvidenceConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	WALMode      bool   `yaml:"wal_mode"`
}

// RecorderConfig configures the async evidence recorder.
type RecorderConfig struct {
	// AsyncBuffer is the size of the in-memory record queue.
	AsyncBuffer int `yaml:"async_buffer"`

	// WriteTimeout bounds a single storage write.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxExcerptLength caps the stored utterance excerpt, in runes.
	MaxExcerptLength int `yaml:"max_excerpt_length"`
}

// RetentionConfig configures evidence retention.
type RetentionConfig struct {
	// Days is how long records are kept. Zero disables pruning.
	Days int `yaml:"days"`

	// PruneSchedule is a standard five-field cron expression.
	PruneSchedule string `yaml:"prune_schedule"`
}

// HistoryConfig configures transcript persistence.
type HistoryConfig struct {
	// Enabled turns transcript saving on or off.
	Enabled bool `yaml:"enabled"`

	// Path is the transcript database file.
	Path string `yaml:"path"`
}

// TelemetryConfig groups logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text", "console").
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// RedactPII enables redaction of sensitive client data in logged
	// utterance excerpts.
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns adds custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a custom redaction rule.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric collection on or off.
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric namespace prefix.
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem prefix.
	Subsystem string `yaml:"subsystem"`

	// ListenAddress, when non-empty, serves metrics over HTTP.
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the metrics endpoint.
	Path string `yaml:"path"`

	// EvaluationDurationBuckets customizes the evaluation latency
	// histogram buckets, in seconds.
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`
}
