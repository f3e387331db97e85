package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/warden/pkg/config"
)

// Collector owns every Prometheus metric of the enforcer. A nil *Collector
// is valid and records nothing, so components can take one unconditionally.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	policyMetrics      *PolicyMetrics
	enforcementMetrics *EnforcementMetrics
}

// NewCollector creates a collector and registers its metrics with registry.
// If registry is nil a fresh one is created.
//
// Example:
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		policyMetrics:      NewPolicyMetrics(cfg.Namespace, registry),
		enforcementMetrics: NewEnforcementMetrics(cfg.Namespace, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordRefresh records a finished configuration refresh.
//
// outcome is one of "activated", "fallback", "unchanged".
func (c *Collector) RecordRefresh(outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.refreshesTotal.WithLabelValues(outcome).Inc()
	c.policyMetrics.refreshDuration.Observe(duration.Seconds())
}

// RecordFetch records the result of one source fetch.
func (c *Collector) RecordFetch(source string, err error) {
	if !c.enabled() {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.policyMetrics.fetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordParseIssue records a diagnostic produced while parsing a document.
func (c *Collector) RecordParseIssue(kind string) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.parseIssuesTotal.WithLabelValues(kind).Inc()
}

// RecordPersistFailure records a snapshot that could not be saved.
func (c *Collector) RecordPersistFailure() {
	if !c.enabled() {
		return
	}
	c.policyMetrics.persistFailures.Inc()
}

// SetActiveConfiguration publishes the size of the active configuration.
func (c *Collector) SetActiveConfiguration(domains, groups int, activatedAt time.Time) {
	if !c.enabled() {
		return
	}
	c.policyMetrics.activeDomains.Set(float64(domains))
	c.policyMetrics.activeGroups.Set(float64(groups))
	c.policyMetrics.activatedAt.Set(float64(activatedAt.Unix()))
}

// RecordEvaluation records a navigation evaluation and the actions it produced.
func (c *Collector) RecordEvaluation(actions []string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.enforcementMetrics.evaluationsTotal.Inc()
	c.enforcementMetrics.evaluationDuration.Observe(duration.Seconds())
	for _, a := range actions {
		c.enforcementMetrics.actionsTotal.WithLabelValues(a).Inc()
	}
}

// RecordRedirect records a navigation redirected to the block page.
func (c *Collector) RecordRedirect() {
	if !c.enabled() {
		return
	}
	c.enforcementMetrics.redirectsTotal.Inc()
}

// RecordOverride records a disclaimer acceptance or sticky cancellation.
func (c *Collector) RecordOverride(kind string) {
	if !c.enabled() {
		return
	}
	c.enforcementMetrics.overrideGrants.WithLabelValues(kind).Inc()
}

// SetOverrideEntries publishes the size of an override store.
func (c *Collector) SetOverrideEntries(kind string, n int) {
	if !c.enabled() {
		return
	}
	c.enforcementMetrics.overrideEntries.WithLabelValues(kind).Set(float64(n))
}

// SetTrackedTabs publishes the size of the tab action store.
func (c *Collector) SetTrackedTabs(n int) {
	if !c.enabled() {
		return
	}
	c.enforcementMetrics.trackedTabs.Set(float64(n))
}

// RecordMessage records an inbound UI message.
//
// status is "ok" or "error".
func (c *Collector) RecordMessage(category, status string) {
	if !c.enabled() {
		return
	}
	c.enforcementMetrics.messagesTotal.WithLabelValues(category, status).Inc()
}
