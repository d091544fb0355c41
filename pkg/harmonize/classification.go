package harmonize

// harmonizeClassification merges the data-classification rules of both
// policies into a single synthesized rule. Classification rules only carry
// allow lists, so there is no contradiction to detect: strict keeps the
// classifications both policies allow, every other strategy keeps the union.
func harmonizeClassification(groupA, groupB []PolicyRule, strategy Strategy) []PolicyRule {
	allowedA := collectSet(groupA, func(c Condition) []string { return c.Allowed })
	allowedB := collectSet(groupB, func(c Condition) []string { return c.Allowed })

	var allowed map[string]struct{}
	if strategy == StrategyStrict {
		allowed = intersect(allowedA, allowedB)
	} else {
		allowed = union(allowedA, allowedB)
	}

	synthesized := PolicyRule{
		ID:   "harmonized_data_classification",
		Type: TypeDataClassification,
		Condition: Condition{
			Allowed: sortedKeys(allowed),
		},
		Action:   "enforce",
		Severity: RuleSeverityWarning,
		Message:  "Harmonized data classification policy",
		Priority: maxPriority(groupA, groupB),
		Source:   SourceHarmonized,
	}

	return []PolicyRule{synthesized}
}
