// Package risk turns a batch of telemetry atoms for one AI tool into a
// single explainable 0-100 risk score.
//
// # Overview
//
// The composite score has four components with fixed budgets:
//
//   - frequency  (0-25): events per hour against threshold bands
//   - severity   (0-40): severity-weighted average over the batch
//   - pattern    (0-20): spike and increasing-trend detection over five
//     contiguous time chunks
//   - compliance (0-15): trailing 30-day approval rate from the decision
//     history store
//
// The component sum is scaled by a regional multiplier, rounded, and clamped
// to [0,100]. The score carries a breakdown, the top contributing factors,
// and capped, deduplicated recommendations.
//
// # Failure semantics
//
// The compliance-history lookup is the only suspension point. It is
// timeout-bounded and failure-tolerant: any lookup error or empty history is
// absorbed into a moderate default contribution, never surfaced as an error.
// A score is always computable from the atoms alone.
//
// # Basic Usage
//
//	scorer := risk.NewScorer(historyReader, nil, logger)
//	score := scorer.Score(ctx, atoms, risk.Options{
//	    Region:     "EU",
//	    ToolID:     "tool-7",
//	    TimeWindow: "24h",
//	})
package risk
