package config

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors accumulates configuration problems so that a single
// validation pass reports everything that is wrong.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for invalid values. It returns a
// ValidationErrors covering every problem found, or nil.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	add := func(field, message string) {
		errs = append(errs, &ValidationError{Field: field, Message: message})
	}

	if cfg.Catalog.Path == "" {
		add("catalog.path", "catalog path is required")
	}
	if cfg.Catalog.DebounceInterval < 0 {
		add("catalog.debounce_interval", "must not be negative")
	}
	if cfg.Catalog.MaxFileSize <= 0 {
		add("catalog.max_file_size", "must be positive")
	}
	if cfg.Catalog.MaxConditionDepth < 1 {
		add("catalog.max_condition_depth", "must be at least 1")
	}

	if cfg.Engine.SituationalBudget < 0 {
		add("engine.situational_budget", "must not be negative")
	}
	if cfg.Engine.MaxRules < 1 {
		add("engine.max_rules", "must be at least 1")
	}

	switch cfg.Evidence.Backend {
	case "memory", "sqlite":
	default:
		add("evidence.backend", fmt.Sprintf("unknown backend %q (expected \"memory\" or \"sqlite\")", cfg.Evidence.Backend))
	}
	if cfg.Evidence.Enabled && cfg.Evidence.Backend == "sqlite" && cfg.Evidence.SQLite.Path == "" {
		add("evidence.sqlite.path", "required when the sqlite backend is enabled")
	}
	if cfg.Evidence.Recorder.AsyncBuffer < 1 {
		add("evidence.recorder.async_buffer", "must be at least 1")
	}
	if cfg.Evidence.Recorder.WriteTimeout <= 0 {
		add("evidence.recorder.write_timeout", "must be positive")
	}
	if cfg.Evidence.Retention.Days < 0 {
		add("evidence.retention.days", "must not be negative")
	}

	if cfg.History.Enabled && cfg.History.Path == "" {
		add("history.path", "required when history is enabled")
	}

	switch cfg.Telemetry.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		add("telemetry.logging.level", fmt.Sprintf("unknown level %q", cfg.Telemetry.Logging.Level))
	}
	switch cfg.Telemetry.Logging.Format {
	case "json", "text", "console":
	default:
		add("telemetry.logging.format", fmt.Sprintf("unknown format %q", cfg.Telemetry.Logging.Format))
	}

	for i, bucket := range cfg.Telemetry.Metrics.EvaluationDurationBuckets {
		if bucket <= 0 {
			add("telemetry.metrics.evaluation_duration_buckets",
				fmt.Sprintf("bucket %d must be positive", i))
			break
		}
		if i > 0 && bucket <= cfg.Telemetry.Metrics.EvaluationDurationBuckets[i-1] {
			add("telemetry.metrics.evaluation_duration_buckets", "buckets must be strictly increasing")
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
