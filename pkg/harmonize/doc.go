// Package harmonize combines two independently authored policy rule sets
// (e.g., enterprise-wide vs. agency-specific) into one effective set plus a
// conflict report.
//
// # Overview
//
// Rules are grouped by type. Types present on only one side pass through
// unchanged. Types present on both sides dispatch to a type-specific
// harmonizer:
//
//   - jurisdiction: allow/deny set algebra with contradiction detection
//   - data_classification: allow-set algebra, no contradiction concept
//   - use_case, version_constraint, and unrecognized types: verbatim
//     concatenation (extension points, no merging logic yet)
//
// The chosen strategy biases conflict resolution: strict favors restriction,
// permissive favors allowance, and merge (the default) resolves jurisdiction
// contradictions toward denial.
//
// Harmonization is deterministic and idempotent: identical inputs and
// strategy always produce identical combined rules and conflicts (the
// harmonized_at timestamp aside). Every synthesized rule carries the source
// tag "harmonized"; pass-through rules keep their original source.
//
// # Basic Usage
//
//	h := harmonize.New(logger)
//	result := h.Harmonize(enterpriseRules, agencyRules, harmonize.StrategyMerge)
//	for _, conflict := range result.Conflicts {
//	    // surface contradictions for manual review
//	}
package harmonize
