// Package telemetry groups the observability subpackages of the decision
// engine.
//
// # Components
//
//   - logging: structured slog logging with request-scoped context fields
//   - metrics: Prometheus metrics collection and the /metrics handler
//   - health: liveness and readiness checks for the probe endpoints
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	if err != nil {
//		return err
//	}
//
//	m := metrics.New()
//	m.RecordEvaluation("STRICT_PASS", elapsed)
//
//	checker := health.New(0)
//	checker.RegisterCheck("history", pingHistory)
package telemetry
