package metrics

import (
	"time"

	"expandev/atena/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the orchestrator for all Prometheus metrics in the
// agent. It owns the registry and provides a unified recording surface
// so instrumented packages never touch Prometheus types directly.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	engineMetrics   *EngineMetrics
	evidenceMetrics *EvidenceMetrics
}

// NewCollector creates a metrics collector with the given configuration
// and registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "atena"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "agent"
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		// Rule evaluation is in-memory and should be fast.
		cfg.EvaluationDurationBuckets = prometheus.ExponentialBuckets(0.000001, 2, 15) // 1µs to 16ms
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.engineMetrics = NewEngineMetrics(cfg, registry)
	c.evidenceMetrics = NewEvidenceMetrics(cfg, registry)

	return c
}

// RecordTurn records a completed turn evaluation.
//
// status is "success", "conflict", or "error". governingSize is the
// number of rules in the turn's governing set.
func (c *Collector) RecordTurn(status string, duration time.Duration, governingSize int) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.RecordTurn(status, duration, governingSize)
}

// RecordRuleMatch records that a rule matched during evaluation.
func (c *Collector) RecordRuleMatch(ruleID, category string) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.RecordRuleMatch(ruleID, category)
}

// RecordRuleApplied records that a rule entered the governing set.
func (c *Collector) RecordRuleApplied(ruleID, category string) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.RecordRuleApplied(ruleID, category)
}

// RecordConflict records a detected rule conflict.
func (c *Collector) RecordConflict(neverID, conflictID string) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.RecordConflict(neverID, conflictID)
}

// RecordCatalogReload records a catalog reload attempt.
//
// status is "success" or "error". ruleCount is the size of the active
// catalog after the reload attempt.
func (c *Collector) RecordCatalogReload(status string, ruleCount int) {
	if !c.config.Enabled {
		return
	}
	c.engineMetrics.RecordCatalogReload(status, ruleCount)
}

// RecordEvidenceWrite records the outcome of an evidence storage write.
//
// status is "success", "error", or "dropped".
func (c *Collector) RecordEvidenceWrite(status string) {
	if !c.config.Enabled {
		return
	}
	c.evidenceMetrics.RecordWrite(status)
}

// UpdateEvidenceQueueDepth updates the recorder queue depth gauge.
func (c *Collector) UpdateEvidenceQueueDepth(depth int) {
	if !c.config.Enabled {
		return
	}
	c.evidenceMetrics.UpdateQueueDepth(depth)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
