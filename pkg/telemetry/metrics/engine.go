package metrics

import (
	"time"

	"expandev/atena/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks rule evaluation metrics.
//
// Metrics:
//   - atena_agent_turns_total: Turn evaluations by status
//   - atena_agent_evaluation_duration_seconds: Turn evaluation latency
//   - atena_agent_governing_set_size: Rules in the governing set per turn
//   - atena_agent_rule_matches_total: Rule matches by rule and category
//   - atena_agent_rules_applied_total: Rules admitted to governing sets
//   - atena_agent_rule_conflicts_total: Detected rule conflicts
//   - atena_agent_catalog_reloads_total: Catalog reloads by status
//   - atena_agent_catalog_rules: Rules in the active catalog
type EngineMetrics struct {
	turnsTotal         *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	governingSetSize   prometheus.Histogram
	matchesTotal       *prometheus.CounterVec
	appliedTotal       *prometheus.CounterVec
	conflictsTotal     *prometheus.CounterVec
	catalogReloads     *prometheus.CounterVec
	catalogRules       prometheus.Gauge
}

// NewEngineMetrics creates and registers engine metrics with the registry.
func NewEngineMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EngineMetrics {
	em := &EngineMetrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "turns_total",
				Help:      "Total number of turn evaluations",
			},
			[]string{"status"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of turn evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
		),

		governingSetSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "governing_set_size",
				Help:      "Number of rules in the governing set per turn",
				Buckets:   prometheus.LinearBuckets(0, 1, 12),
			},
		),

		matchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_matches_total",
				Help:      "Total number of rule matches during evaluation",
			},
			[]string{"rule_id", "category"},
		),

		appliedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rules_applied_total",
				Help:      "Total number of rules admitted to a governing set",
			},
			[]string{"rule_id", "category"},
		),

		conflictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rule_conflicts_total",
				Help:      "Total number of detected rule conflicts",
			},
			[]string{"never_id", "conflict_id"},
		),

		catalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_reloads_total",
				Help:      "Total number of catalog reload attempts",
			},
			[]string{"status"},
		),

		catalogRules: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "catalog_rules",
				Help:      "Number of rules in the active catalog",
			},
		),
	}

	registry.MustRegister(
		em.turnsTotal,
		em.evaluationDuration,
		em.governingSetSize,
		em.matchesTotal,
		em.appliedTotal,
		em.conflictsTotal,
		em.catalogReloads,
		em.catalogRules,
	)

	return em
}

// RecordTurn records a completed turn evaluation.
func (em *EngineMetrics) RecordTurn(status string, duration time.Duration, governingSize int) {
	em.turnsTotal.WithLabelValues(status).Inc()
	em.evaluationDuration.Observe(duration.Seconds())
	em.governingSetSize.Observe(float64(governingSize))
}

// RecordRuleMatch records that a rule matched during evaluation.
func (em *EngineMetrics) RecordRuleMatch(ruleID, category string) {
	em.matchesTotal.WithLabelValues(ruleID, category).Inc()
}

// RecordRuleApplied records that a rule entered the governing set.
func (em *EngineMetrics) RecordRuleApplied(ruleID, category string) {
	em.appliedTotal.WithLabelValues(ruleID, category).Inc()
}

// RecordConflict records a detected rule conflict.
func (em *EngineMetrics) RecordConflict(neverID, conflictID string) {
	em.conflictsTotal.WithLabelValues(neverID, conflictID).Inc()
}

// RecordCatalogReload records a catalog reload attempt and updates the
// active rule count gauge.
func (em *EngineMetrics) RecordCatalogReload(status string, ruleCount int) {
	em.catalogReloads.WithLabelValues(status).Inc()
	em.catalogRules.Set(float64(ruleCount))
}
