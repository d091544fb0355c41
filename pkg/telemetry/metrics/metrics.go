// Package metrics exposes Prometheus metrics for the decision engine: one
// metric family per evaluator plus HTTP request instrumentation, collected
// into a dedicated registry and served by Handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "aegis"
	subsystem = "minerva"
)

// Metrics tracks the engine's Prometheus metrics.
//
// Metric families:
//   - aegis_minerva_evaluations_total: rule-set evaluations by overall outcome
//   - aegis_minerva_rule_results_total: per-rule outcomes by rule id
//   - aegis_minerva_risk_scores_total: risk scores by level
//   - aegis_minerva_risk_score_value: last computed risk total per tool
//   - aegis_minerva_harmonizations_total: harmonizations by strategy
//   - aegis_minerva_harmonization_conflicts: conflicts per harmonization
//   - aegis_minerva_http_requests_total: API requests by path and status
//   - aegis_minerva_http_request_duration_seconds: API latency by path
type Metrics struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	ruleResultsTotal   *prometheus.CounterVec

	riskScoresTotal *prometheus.CounterVec
	riskScoreValue  *prometheus.GaugeVec

	harmonizationsTotal    *prometheus.CounterVec
	harmonizationConflicts prometheus.Histogram

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the engine metrics and registers them with a fresh registry
// alongside the standard process and Go runtime collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "evaluations_total",
				Help:      "Total rule-set evaluations by overall outcome",
			},
			[]string{"outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of rule-set evaluation in seconds",
				// Evaluations are in-memory and should stay under 10ms.
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15),
			},
			[]string{"outcome"},
		),

		ruleResultsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rule_results_total",
				Help:      "Per-rule outcomes by rule id",
			},
			[]string{"rule_id", "outcome"},
		),

		riskScoresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "risk_scores_total",
				Help:      "Total risk scores computed by level",
			},
			[]string{"risk_level"},
		),

		riskScoreValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "risk_score_value",
				Help:      "Last computed risk score total per tool",
			},
			[]string{"tool_id"},
		),

		harmonizationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "harmonizations_total",
				Help:      "Total harmonizations by strategy",
			},
			[]string{"strategy"},
		),

		harmonizationConflicts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "harmonization_conflicts",
				Help:      "Conflicts detected per harmonization",
				Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total API requests by path and status code",
			},
			[]string{"path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"path"},
		),
	}

	registry.MustRegister(
		m.evaluationsTotal,
		m.evaluationDuration,
		m.ruleResultsTotal,
		m.riskScoresTotal,
		m.riskScoreValue,
		m.harmonizationsTotal,
		m.harmonizationConflicts,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)

	return m
}

// RecordEvaluation records one rule-set evaluation.
func (m *Metrics) RecordEvaluation(outcome string, duration time.Duration) {
	m.evaluationsTotal.WithLabelValues(outcome).Inc()
	m.evaluationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordRuleResult records one per-rule outcome.
func (m *Metrics) RecordRuleResult(ruleID, outcome string) {
	m.ruleResultsTotal.WithLabelValues(ruleID, outcome).Inc()
}

// RecordRiskScore records one computed risk score.
func (m *Metrics) RecordRiskScore(toolID, riskLevel string, total int) {
	m.riskScoresTotal.WithLabelValues(riskLevel).Inc()
	if toolID != "" {
		m.riskScoreValue.WithLabelValues(toolID).Set(float64(total))
	}
}

// RecordHarmonization records one harmonization run.
func (m *Metrics) RecordHarmonization(strategy string, conflicts int) {
	m.harmonizationsTotal.WithLabelValues(strategy).Inc()
	m.harmonizationConflicts.Observe(float64(conflicts))
}

// RecordHTTPRequest records one completed API request.
func (m *Metrics) RecordHTTPRequest(path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(path, status).Inc()
	m.httpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
