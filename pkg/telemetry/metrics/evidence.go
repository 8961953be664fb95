package metrics

import (
	"expandev/atena/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvidenceMetrics tracks evidence recording metrics.
//
// Metrics:
//   - atena_agent_evidence_writes_total: Storage writes by status
//   - atena_agent_evidence_queue_depth: Pending records in the recorder queue
type EvidenceMetrics struct {
	writesTotal *prometheus.CounterVec
	queueDepth  prometheus.Gauge
}

// NewEvidenceMetrics creates and registers evidence metrics with the registry.
func NewEvidenceMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvidenceMetrics {
	em := &EvidenceMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_writes_total",
				Help:      "Total number of evidence storage writes",
			},
			[]string{"status"},
		),

		queueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evidence_queue_depth",
				Help:      "Number of records pending in the recorder queue",
			},
		),
	}

	registry.MustRegister(em.writesTotal, em.queueDepth)

	return em
}

// RecordWrite records the outcome of a storage write.
func (em *EvidenceMetrics) RecordWrite(status string) {
	em.writesTotal.WithLabelValues(status).Inc()
}

// UpdateQueueDepth updates the recorder queue depth gauge.
func (em *EvidenceMetrics) UpdateQueueDepth(depth int) {
	em.queueDepth.Set(float64(depth))
}
