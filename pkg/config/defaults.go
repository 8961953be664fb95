package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultCatalogPath       = "configs/rules/atena.yaml"
	DefaultDebounceInterval  = 300 * time.Millisecond
	DefaultMaxFileSize       = 1 << 20 // 1 MB
	DefaultMaxConditionDepth = 8

	DefaultSituationalBudget = 2
	DefaultMaxRules          = 200

	DefaultEvidenceBackend  = "memory"
	DefaultAsyncBuffer      = 1000
	DefaultWriteTimeout     = 5 * time.Second
	DefaultMaxExcerptLength = 500
	DefaultRetentionDays    = 90
	DefaultPruneSchedule    = "0 2 * * *"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "atena"
	DefaultMetricsSubsystem = "agent"
	DefaultMetricsPath      = "/metrics"
)

// ApplyDefaults fills in zero-valued fields with their defaults.
// It never overwrites a value the user has set.
func ApplyDefaults(cfg *Config) {
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = DefaultCatalogPath
	}
	if cfg.Catalog.DebounceInterval == 0 {
		cfg.Catalog.DebounceInterval = DefaultDebounceInterval
	}
	if cfg.Catalog.MaxFileSize == 0 {
		cfg.Catalog.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Catalog.MaxConditionDepth == 0 {
		cfg.Catalog.MaxConditionDepth = DefaultMaxConditionDepth
	}

	if cfg.Engine.SituationalBudget == 0 {
		cfg.Engine.SituationalBudget = DefaultSituationalBudget
	}
	if cfg.Engine.MaxRules == 0 {
		cfg.Engine.MaxRules = DefaultMaxRules
	}

	if cfg.Evidence.Backend == "" {
		cfg.Evidence.Backend = DefaultEvidenceBackend
	}
	if cfg.Evidence.SQLite.MaxOpenConns == 0 {
		cfg.Evidence.SQLite.MaxOpenConns = 10
	}
	if cfg.Evidence.SQLite.MaxIdleConns == 0 {
		cfg.Evidence.SQLite.MaxIdleConns = 5
	}
	if cfg.Evidence.Recorder.AsyncBuffer == 0 {
		cfg.Evidence.Recorder.AsyncBuffer = DefaultAsyncBuffer
	}
	if cfg.Evidence.Recorder.WriteTimeout == 0 {
		cfg.Evidence.Recorder.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Evidence.Recorder.MaxExcerptLength == 0 {
		cfg.Evidence.Recorder.MaxExcerptLength = DefaultMaxExcerptLength
	}
	if cfg.Evidence.Retention.Days == 0 {
		cfg.Evidence.Retention.Days = DefaultRetentionDays
	}
	if cfg.Evidence.Retention.PruneSchedule == "" {
		cfg.Evidence.Retention.PruneSchedule = DefaultPruneSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}

	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}

// DefaultConfig returns a fully defaulted configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
