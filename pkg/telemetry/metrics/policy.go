package metrics

import "github.com/prometheus/client_golang/prometheus"

// PolicyMetrics tracks the configuration lifecycle.
//
// Metrics:
//   - warden_policy_refreshes_total: Refreshes by outcome
//   - warden_policy_refresh_duration_seconds: Refresh duration
//   - warden_policy_fetches_total: Source fetches by source and status
//   - warden_policy_parse_issues_total: Parser diagnostics by kind
//   - warden_policy_persist_failures_total: Snapshots that could not be saved
//   - warden_policy_active_domains: Domains in the active configuration
//   - warden_policy_active_groups: Resource groups in the active configuration
//   - warden_policy_activated_timestamp_seconds: When the active configuration was installed
type PolicyMetrics struct {
	refreshesTotal   *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	fetchesTotal     *prometheus.CounterVec
	parseIssuesTotal *prometheus.CounterVec
	persistFailures  prometheus.Counter
	activeDomains    prometheus.Gauge
	activeGroups     prometheus.Gauge
	activatedAt      prometheus.Gauge
}

// NewPolicyMetrics creates and registers policy metrics with the provided registry.
func NewPolicyMetrics(namespace string, registry *prometheus.Registry) *PolicyMetrics {
	pm := &PolicyMetrics{
		refreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "refreshes_total",
				Help:      "Total number of configuration refreshes by outcome",
			},
			[]string{"outcome"},
		),

		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "refresh_duration_seconds",
				Help:      "Duration of configuration refreshes in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "fetches_total",
				Help:      "Total number of policy source fetches",
			},
			[]string{"source", "status"},
		),

		parseIssuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "parse_issues_total",
				Help:      "Total number of policy parse diagnostics",
			},
			[]string{"kind"},
		),

		persistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "persist_failures_total",
				Help:      "Total number of snapshots that could not be persisted",
			},
		),

		activeDomains: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "active_domains",
				Help:      "Number of domains in the active configuration",
			},
		),

		activeGroups: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "active_groups",
				Help:      "Number of resource groups in the active configuration",
			},
		),

		activatedAt: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "policy",
				Name:      "activated_timestamp_seconds",
				Help:      "Unix time the active configuration was installed",
			},
		),
	}

	registry.MustRegister(
		pm.refreshesTotal,
		pm.refreshDuration,
		pm.fetchesTotal,
		pm.parseIssuesTotal,
		pm.persistFailures,
		pm.activeDomains,
		pm.activeGroups,
		pm.activatedAt,
	)

	return pm
}
