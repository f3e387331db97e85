package metrics

import "github.com/prometheus/client_golang/prometheus"

// EnforcementMetrics tracks navigation evaluation and UI events.
//
// Metrics:
//   - warden_enforcement_evaluations_total: Navigations evaluated
//   - warden_enforcement_evaluation_duration_seconds: Evaluation duration
//   - warden_enforcement_actions_total: Actions emitted by action type
//   - warden_enforcement_redirects_total: Navigations redirected to the block page
//   - warden_enforcement_override_grants_total: Disclaimer and sticky grants
//   - warden_enforcement_override_entries: Live entries per override store
//   - warden_enforcement_tracked_tabs: Tabs with a stored evaluation
//   - warden_enforcement_messages_total: UI messages by category and status
type EnforcementMetrics struct {
	evaluationsTotal   prometheus.Counter
	evaluationDuration prometheus.Histogram
	actionsTotal       *prometheus.CounterVec
	redirectsTotal     prometheus.Counter
	overrideGrants     *prometheus.CounterVec
	overrideEntries    *prometheus.GaugeVec
	trackedTabs        prometheus.Gauge
	messagesTotal      *prometheus.CounterVec
}

// NewEnforcementMetrics creates and registers enforcement metrics with the provided registry.
func NewEnforcementMetrics(namespace string, registry *prometheus.Registry) *EnforcementMetrics {
	em := &EnforcementMetrics{
		evaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "evaluations_total",
				Help:      "Total number of navigations evaluated",
			},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of navigation evaluation in seconds",
				// Evaluation is a map lookup plus a few store reads
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
		),

		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "actions_total",
				Help:      "Total number of policy actions emitted",
			},
			[]string{"action"},
		),

		redirectsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "redirects_total",
				Help:      "Total number of navigations redirected to the block page",
			},
		),

		overrideGrants: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "override_grants_total",
				Help:      "Total number of override grants by kind",
			},
			[]string{"kind"},
		),

		overrideEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "override_entries",
				Help:      "Number of entries held by each override store",
			},
			[]string{"kind"},
		),

		trackedTabs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "tracked_tabs",
				Help:      "Number of tabs with a stored evaluation",
			},
		),

		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "enforcement",
				Name:      "messages_total",
				Help:      "Total number of UI messages handled",
			},
			[]string{"category", "status"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.actionsTotal,
		em.redirectsTotal,
		em.overrideGrants,
		em.overrideEntries,
		em.trackedTabs,
		em.messagesTotal,
	)

	return em
}
