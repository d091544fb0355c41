package harmonize

import (
	"log/slog"
	"sort"
	"time"
)

// Harmonizer combines two policy rule sets. It is stateless; one instance is
// safe for concurrent use.
type Harmonizer struct {
	logger *slog.Logger

	// now is the clock, overridable in tests.
	now func() time.Time
}

// New creates a harmonizer.
func New(logger *slog.Logger) *Harmonizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Harmonizer{
		logger: logger.With("component", "harmonize"),
		now:    time.Now,
	}
}

// Harmonize combines rulesA and rulesB under the given strategy. Inputs are
// never mutated; every rule in the output is a copy. The combined set and the
// conflict list are deterministic for identical inputs.
func (h *Harmonizer) Harmonize(rulesA, rulesB []PolicyRule, strategy Strategy) *Result {
	if strategy == "" {
		strategy = StrategyMerge
	}

	taggedA := tagRules(rulesA, SourcePolicyA)
	taggedB := tagRules(rulesB, SourcePolicyB)

	combined := make([]PolicyRule, 0, len(taggedA)+len(taggedB))
	conflicts := make([]Conflict, 0)

	for _, ruleType := range ruleTypes(taggedA, taggedB) {
		groupA := rulesOfType(taggedA, ruleType)
		groupB := rulesOfType(taggedB, ruleType)

		// Types present on one side only pass through unchanged.
		if len(groupA) == 0 || len(groupB) == 0 {
			combined = append(combined, groupA...)
			combined = append(combined, groupB...)
			continue
		}

		switch ruleType {
		case TypeJurisdiction:
			rules, found := harmonizeJurisdiction(groupA, groupB, strategy)
			combined = append(combined, rules...)
			conflicts = append(conflicts, found...)
		case TypeDataClassification:
			combined = append(combined, harmonizeClassification(groupA, groupB, strategy)...)
		default:
			// use_case, version_constraint, and unrecognized types have
			// no merging semantics; both sides are kept.
			combined = append(combined, groupA...)
			combined = append(combined, groupB...)
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].Priority != combined[j].Priority {
			return combined[i].Priority > combined[j].Priority
		}
		return combined[i].Type < combined[j].Type
	})

	result := &Result{
		Combined:  combined,
		Conflicts: conflicts,
		Metadata: Metadata{
			TotalRulesA:   len(rulesA),
			TotalRulesB:   len(rulesB),
			CombinedCount: len(combined),
			ConflictCount: len(conflicts),
			Strategy:      strategy,
			HarmonizedAt:  h.now().UTC(),
		},
	}

	h.logger.Debug("policies harmonized",
		"strategy", string(strategy),
		"rules_a", len(rulesA),
		"rules_b", len(rulesB),
		"combined", len(combined),
		"conflicts", len(conflicts),
	)

	return result
}

// tagRules copies the input and stamps the source tag on rules that do not
// already carry one.
func tagRules(rules []PolicyRule, source string) []PolicyRule {
	tagged := make([]PolicyRule, len(rules))
	copy(tagged, rules)
	for i := range tagged {
		if tagged[i].Source == "" {
			tagged[i].Source = source
		}
	}
	return tagged
}

// ruleTypes returns the distinct rule types in first-seen order: types from
// set A in their order of appearance, then types only set B introduces.
func ruleTypes(rulesA, rulesB []PolicyRule) []string {
	seen := make(map[string]struct{})
	types := make([]string, 0, len(rulesA)+len(rulesB))
	for _, rule := range rulesA {
		if _, ok := seen[rule.Type]; !ok {
			seen[rule.Type] = struct{}{}
			types = append(types, rule.Type)
		}
	}
	for _, rule := range rulesB {
		if _, ok := seen[rule.Type]; !ok {
			seen[rule.Type] = struct{}{}
			types = append(types, rule.Type)
		}
	}
	return types
}

func rulesOfType(rules []PolicyRule, ruleType string) []PolicyRule {
	var out []PolicyRule
	for _, rule := range rules {
		if rule.Type == ruleType {
			out = append(out, rule)
		}
	}
	return out
}

// maxPriority returns the highest priority among the given rules, so a
// synthesized rule sorts no lower than the rules it replaces.
func maxPriority(groups ...[]PolicyRule) int {
	max := 0
	for _, group := range groups {
		for _, rule := range group {
			if rule.Priority > max {
				max = rule.Priority
			}
		}
	}
	return max
}
