package rules

import "sync"

// RuleStats contains execution statistics for one rule.
type RuleStats struct {
	Executions  int64   `json:"executions"`
	Passes      int64   `json:"passes"`
	Fails       int64   `json:"fails"`
	Warnings    int64   `json:"warnings"`
	PassRate    float64 `json:"passRate"`
	FailRate    float64 `json:"failRate"`
	WarningRate float64 `json:"warningRate"`
}

// statsTracker accumulates per-rule execution counters.
type statsTracker struct {
	mu    sync.Mutex
	byID  map[string]*ruleCounters
	total ruleCounters
}

type ruleCounters struct {
	executions int64
	passes     int64
	fails      int64
	warnings   int64
}

func newStatsTracker() *statsTracker {
	return &statsTracker{byID: make(map[string]*ruleCounters)}
}

func (t *statsTracker) record(ruleID string, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.byID[ruleID]
	if !ok {
		c = &ruleCounters{}
		t.byID[ruleID] = c
	}

	c.executions++
	t.total.executions++

	switch outcome {
	case StrictPass:
		c.passes++
		t.total.passes++
	case StrictFail:
		c.fails++
		t.total.fails++
	case SoftWarn:
		c.warnings++
		t.total.warnings++
	}
}

// Stats returns a snapshot of per-rule execution statistics keyed by rule ID.
func (r *Registry) Stats() map[string]RuleStats {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()

	out := make(map[string]RuleStats, len(r.stats.byID))
	for id, c := range r.stats.byID {
		s := RuleStats{
			Executions: c.executions,
			Passes:     c.passes,
			Fails:      c.fails,
			Warnings:   c.warnings,
		}
		if c.executions > 0 {
			s.PassRate = float64(c.passes) / float64(c.executions)
			s.FailRate = float64(c.fails) / float64(c.executions)
			s.WarningRate = float64(c.warnings) / float64(c.executions)
		}
		out[id] = s
	}
	return out
}

// FailureRatio returns totalFails/totalExecutions over all rules, or 0 when
// nothing has executed yet.
func (r *Registry) FailureRatio() float64 {
	r.stats.mu.Lock()
	defer r.stats.mu.Unlock()

	if r.stats.total.executions == 0 {
		return 0
	}
	return float64(r.stats.total.fails) / float64(r.stats.total.executions)
}

// healthyFailureRatio is the failure ratio below which the registry reports
// itself healthy.
const healthyFailureRatio = 0.10

// Healthy reports whether the overall failure ratio is below the health
// threshold. A registry with zero executions is healthy.
func (r *Registry) Healthy() bool {
	return r.FailureRatio() < healthyFailureRatio
}
