package harmonize

import (
	"fmt"
	"sort"
)

// harmonizeJurisdiction merges the jurisdiction rules of both policies into a
// single synthesized rule and reports every jurisdiction one policy allows
// while the other denies.
func harmonizeJurisdiction(groupA, groupB []PolicyRule, strategy Strategy) ([]PolicyRule, []Conflict) {
	allowedA := collectSet(groupA, func(c Condition) []string { return c.Allowed })
	deniedA := collectSet(groupA, func(c Condition) []string { return c.Denied })
	allowedB := collectSet(groupB, func(c Condition) []string { return c.Allowed })
	deniedB := collectSet(groupB, func(c Condition) []string { return c.Denied })

	conflicts := jurisdictionConflicts(groupA, groupB, allowedA, deniedA, allowedB, deniedB, strategy)

	conflicting := make(map[string]struct{})
	for j := range intersect(allowedA, deniedB) {
		conflicting[j] = struct{}{}
	}
	for j := range intersect(allowedB, deniedA) {
		conflicting[j] = struct{}{}
	}

	var allowed, denied map[string]struct{}
	switch strategy {
	case StrategyStrict:
		allowed = subtract(intersect(allowedA, allowedB), conflicting)
		denied = union(deniedA, deniedB)
	case StrategyPermissive:
		allowed = union(allowedA, allowedB)
		denied = subtract(intersect(deniedA, deniedB), conflicting)
	default:
		// merge: contradictions resolve toward denial.
		allowed = subtract(union(allowedA, allowedB), conflicting)
		denied = union(union(deniedA, deniedB), conflicting)
	}

	synthesized := PolicyRule{
		ID:   "harmonized_jurisdiction",
		Type: TypeJurisdiction,
		Condition: Condition{
			Allowed: sortedKeys(allowed),
			Denied:  sortedKeys(denied),
		},
		Action:   "enforce",
		Severity: RuleSeverityError,
		Message:  "Harmonized jurisdiction policy",
		Priority: maxPriority(groupA, groupB),
		Source:   SourceHarmonized,
	}

	return []PolicyRule{synthesized}, conflicts
}

// jurisdictionConflicts emits one contradiction per jurisdiction that is
// allowed on one side and denied on the other, in sorted jurisdiction order
// (allowed-in-A first, then allowed-in-B) so output is deterministic and the
// conflict set is independent of argument order up to direction labels.
func jurisdictionConflicts(groupA, groupB []PolicyRule, allowedA, deniedA, allowedB, deniedB map[string]struct{}, strategy Strategy) []Conflict {
	var conflicts []Conflict

	for _, jurisdiction := range sortedKeys(intersect(allowedA, deniedB)) {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictContradiction,
			Severity: ConflictSeverityHigh,
			RuleA:    ruleMentioning(groupA, jurisdiction, func(c Condition) []string { return c.Allowed }),
			RuleB:    ruleMentioning(groupB, jurisdiction, func(c Condition) []string { return c.Denied }),
			Description: fmt.Sprintf(
				"Jurisdiction %q is allowed in Policy A but denied in Policy B", jurisdiction),
			ResolutionSuggestion: resolutionFor(strategy),
		})
	}

	for _, jurisdiction := range sortedKeys(intersect(allowedB, deniedA)) {
		conflicts = append(conflicts, Conflict{
			Type:     ConflictContradiction,
			Severity: ConflictSeverityHigh,
			RuleA:    ruleMentioning(groupA, jurisdiction, func(c Condition) []string { return c.Denied }),
			RuleB:    ruleMentioning(groupB, jurisdiction, func(c Condition) []string { return c.Allowed }),
			Description: fmt.Sprintf(
				"Jurisdiction %q is denied in Policy A but allowed in Policy B", jurisdiction),
			ResolutionSuggestion: resolutionFor(strategy),
		})
	}

	return conflicts
}

func resolutionFor(strategy Strategy) string {
	switch strategy {
	case StrategyStrict:
		return "Apply most restrictive rule (deny)"
	case StrategyPermissive:
		return "Apply least restrictive rule (allow)"
	default:
		return "Manual review required"
	}
}

// ruleMentioning returns the first rule whose selected list contains the
// jurisdiction. Both sides of a reported conflict are guaranteed to have one.
func ruleMentioning(rules []PolicyRule, jurisdiction string, list func(Condition) []string) PolicyRule {
	for _, rule := range rules {
		for _, j := range list(rule.Condition) {
			if j == jurisdiction {
				return rule
			}
		}
	}
	return PolicyRule{}
}

// collectSet gathers the selected condition list across all rules in a group.
func collectSet(rules []PolicyRule, list func(Condition) []string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, rule := range rules {
		for _, v := range list(rule.Condition) {
			set[v] = struct{}{}
		}
	}
	return set
}

func union(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for v := range a {
		out[v] = struct{}{}
	}
	for v := range b {
		out[v] = struct{}{}
	}
	return out
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for v := range a {
		if _, ok := b[v]; ok {
			out[v] = struct{}{}
		}
	}
	return out
}

func subtract(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for v := range a {
		if _, ok := b[v]; !ok {
			out[v] = struct{}{}
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for v := range set {
		keys = append(keys, v)
	}
	sort.Strings(keys)
	return keys
}
