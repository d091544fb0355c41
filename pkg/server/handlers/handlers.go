package handlers

import (
	"log/slog"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/harmonize"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/risk"
	"aegis-hq/minerva/pkg/rules"
	"aegis-hq/minerva/pkg/telemetry/health"
	"aegis-hq/minerva/pkg/telemetry/metrics"
)

// Handlers carries the evaluators and collaborators the API endpoints use.
// The recorder, store, and metrics may be nil; the corresponding side
// effects are then skipped.
type Handlers struct {
	registry   *rules.Registry
	scorer     *risk.Scorer
	harmonizer *harmonize.Harmonizer

	store    history.Store
	recorder *audit.Recorder
	metrics  *metrics.Metrics
	checker  *health.Checker
	logger   *slog.Logger
}

// New creates the API handlers.
func New(
	registry *rules.Registry,
	scorer *risk.Scorer,
	harmonizer *harmonize.Harmonizer,
	store history.Store,
	recorder *audit.Recorder,
	m *metrics.Metrics,
	checker *health.Checker,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		registry:   registry,
		scorer:     scorer,
		harmonizer: harmonizer,
		store:      store,
		recorder:   recorder,
		metrics:    m,
		checker:    checker,
		logger:     logger.With("component", "server.handlers"),
	}
}
