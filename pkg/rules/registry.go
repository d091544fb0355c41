package rules

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the rule catalog and evaluates contexts against it.
// It is constructed once per process and passed by handle to every caller;
// there is no package-level singleton.
type Registry struct {
	// mu protects rules, order, and byCategory.
	mu sync.RWMutex

	// rules indexes the catalog by rule ID.
	rules map[string]*Rule

	// order preserves insertion order so evaluation (and therefore
	// recommendation ordering) is deterministic. Replacing a rule keeps
	// its original position.
	order []string

	// byCategory indexes rules by category for introspection.
	byCategory map[Category][]*Rule

	// stats tracks per-rule execution statistics.
	stats *statsTracker

	// logger for structured logging.
	logger *slog.Logger
}

// New creates an empty rule registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		rules:      make(map[string]*Rule),
		byCategory: make(map[Category][]*Rule),
		stats:      newStatsTracker(),
		logger:     logger.With("component", "rules.registry"),
	}
}

// NewWithDefaults creates a registry preloaded with the built-in catalog.
func NewWithDefaults(logger *slog.Logger) (*Registry, error) {
	r := New(logger)
	if err := RegisterDefaults(r); err != nil {
		return nil, fmt.Errorf("failed to register default rules: %w", err)
	}
	return r, nil
}

// AddRule inserts a rule, replacing any existing rule with the same ID.
// A replaced rule keeps its original evaluation position.
func (r *Registry) AddRule(rule *Rule) error {
	if rule == nil {
		return &InvalidRuleError{Reason: "rule cannot be nil"}
	}
	if rule.ID == "" {
		return &InvalidRuleError{Reason: "rule ID cannot be empty"}
	}
	if rule.Validator == nil {
		return &InvalidRuleError{RuleID: rule.ID, Reason: "validator cannot be nil"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rules[rule.ID]; ok {
		r.removeFromCategory(existing)
	} else {
		r.order = append(r.order, rule.ID)
	}

	r.rules[rule.ID] = rule
	r.byCategory[rule.Category] = append(r.byCategory[rule.Category], rule)

	return nil
}

// RemoveRule removes a rule from the registry and category index.
// It returns whether the rule existed.
func (r *Registry) RemoveRule(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return false
	}

	delete(r.rules, id)
	r.removeFromCategory(rule)

	for i, rid := range r.order {
		if rid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return true
}

// SetRuleEnabled toggles a rule without removing it. Disabled rules are
// skipped during evaluation. It returns ErrRuleNotFound for unknown IDs.
func (r *Registry) SetRuleEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}

	rule.Enabled = enabled
	return nil
}

// GetRule returns the rule with the given ID, or nil when absent.
func (r *Registry) GetRule(id string) *Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[id]
}

// Rules returns all rules in evaluation order.
func (r *Registry) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Rule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rules[id])
	}
	return out
}

// RulesByCategory returns all rules in the given category.
func (r *Registry) RulesByCategory(category Category) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src := r.byCategory[category]
	out := make([]*Rule, len(src))
	copy(out, src)
	return out
}

// Len returns the number of rules in the catalog.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// ExecuteRules evaluates every enabled, applicable rule against the context
// and aggregates the outcomes into a ValidationResult.
//
// A panicking validator never aborts the batch: the panic is recovered and
// converted to a synthetic STRICT_FAIL outcome carrying the fault message.
func (r *Registry) ExecuteRules(ec *Context) *ValidationResult {
	snapshot := r.applicableRules(ec)

	results := make([]RuleResult, 0, len(snapshot))
	for _, rule := range snapshot {
		outcome := r.runValidator(rule, ec)

		results = append(results, RuleResult{
			RuleID:     rule.ID,
			RuleName:   rule.Name,
			Outcome:    outcome.Outcome,
			Message:    outcome.Message,
			Confidence: outcome.Confidence,
			Applicable: outcome.Applicable,
		})
		// Recovered faults count as failures here, so a rule that keeps
		// panicking drives FailureRatio up and degrades the health check.
		r.stats.record(rule.ID, outcome.Outcome)
	}

	return &ValidationResult{
		Overall:             overallOutcome(results),
		Rules:               results,
		Confidence:          meanConfidence(results),
		HumanReviewRequired: requiresHumanReview(results),
		Recommendations:     buildRecommendations(results),
	}
}

// applicableRules snapshots the enabled, applicable rules in evaluation order
// under a read lock. Mutations racing with an evaluation never change the
// snapshot mid-run.
func (r *Registry) applicableRules(ec *Context) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	applicable := make([]*Rule, 0, len(r.order))
	for _, id := range r.order {
		rule := r.rules[id]
		if rule.Enabled && isRuleApplicable(rule, ec) {
			applicable = append(applicable, rule)
		}
	}
	return applicable
}

// isRuleApplicable reports whether a rule can structurally apply to the
// context. Compliance rules need a tenant; security rules need request input.
// This prevents false failures for contexts that cannot contain the data a
// rule inspects.
func isRuleApplicable(rule *Rule, ec *Context) bool {
	if rule.Category == CategoryCompliance && ec.EnterpriseID == "" {
		return false
	}
	if rule.Category == CategorySecurity && ec.Input == nil {
		return false
	}
	return true
}

// runValidator invokes a validator with panic containment.
func (r *Registry) runValidator(rule *Rule, ec *Context) (outcome RuleOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("rule execution failed",
				"rule_id", rule.ID,
				"panic", rec,
			)
			outcome = RuleOutcome{
				Outcome:    StrictFail,
				Message:    fmt.Sprintf("Rule execution failed: %v", rec),
				Confidence: 0,
				Applicable: true,
			}
		}
	}()

	return rule.Validator(ec)
}

// removeFromCategory removes a rule from the category index.
// Caller must hold the write lock.
func (r *Registry) removeFromCategory(rule *Rule) {
	list := r.byCategory[rule.Category]
	for i, cr := range list {
		if cr.ID == rule.ID {
			r.byCategory[rule.Category] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// overallOutcome aggregates per-rule outcomes: any fail wins, then any warn,
// otherwise pass. An empty set passes.
func overallOutcome(results []RuleResult) Outcome {
	if len(results) == 0 {
		return StrictPass
	}

	hasWarn := false
	for _, res := range results {
		switch res.Outcome {
		case StrictFail:
			return StrictFail
		case SoftWarn:
			hasWarn = true
		}
	}

	if hasWarn {
		return SoftWarn
	}
	return StrictPass
}

// meanConfidence averages the per-rule confidences, defaulting to 1.0 when
// nothing was evaluated.
func meanConfidence(results []RuleResult) float64 {
	if len(results) == 0 {
		return 1.0
	}

	total := 0.0
	for _, res := range results {
		total += res.Confidence
	}
	return total / float64(len(results))
}

// requiresHumanReview reports whether any outcome failed, warned, or carried
// a confidence below 0.7.
func requiresHumanReview(results []RuleResult) bool {
	for _, res := range results {
		if res.Outcome == StrictFail || res.Outcome == SoftWarn || res.Confidence < 0.7 {
			return true
		}
	}
	return false
}

// buildRecommendations emits CRITICAL/WARNING lines in evaluation order.
func buildRecommendations(results []RuleResult) []string {
	recommendations := make([]string, 0)
	for _, res := range results {
		switch res.Outcome {
		case StrictFail:
			recommendations = append(recommendations, "CRITICAL: "+res.Message)
		case SoftWarn:
			recommendations = append(recommendations, "WARNING: "+res.Message)
		}
	}
	return recommendations
}
