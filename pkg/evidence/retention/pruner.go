package retention

import (
	"context"
	"log/slog"
	"time"

	"expandev/atena/pkg/evidence"
)

// Config controls retention behavior.
type Config struct {
	// RetentionDays is how long records are kept. Records older than
	// this are deleted on each prune run. Zero disables pruning.
	RetentionDays int

	// PruneSchedule is a cron expression (standard five-field format)
	// controlling when prune runs happen.
	// Default: "0 2 * * *" (daily at 02:00)
	PruneSchedule string
}

// DefaultConfig returns retention defaults: 90 days, pruned nightly.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 2 * * *",
	}
}

// Pruner deletes evidence records older than the retention window.
type Pruner struct {
	storage evidence.Storage
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a pruner over the given storage backend.
func NewPruner(storage evidence.Storage, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "evidence.retention"),
	}
}

// Prune performs a single prune run. It returns the number of records
// deleted. A zero or negative retention window is a no-op.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.Error("prune failed", "error", err)
		return 0, &evidence.RetentionError{RetentionDays: p.config.RetentionDays, Cause: err}
	}

	if deleted > 0 {
		p.logger.Info("pruned evidence records",
			"deleted", deleted,
			"cutoff", cutoff.Format(time.RFC3339),
			"retention_days", p.config.RetentionDays)
	}

	return deleted, nil
}
