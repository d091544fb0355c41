// Package rules provides the deterministic rule registry and evaluator that
// decides whether a single AI-tool usage request is compliant.
//
// # Overview
//
// A Registry holds a catalog of named, categorized validation rules. Each rule
// carries a pure validator function over an evaluation Context. ExecuteRules
// runs every enabled, applicable rule and aggregates the per-rule outcomes
// into one ValidationResult with an overall verdict, a mean confidence, a
// human-review flag, and ordered recommendations.
//
// Evaluation is deterministic: given the same catalog and the same Context,
// ExecuteRules always produces the same result. A faulty validator can never
// abort the batch; panics are contained per rule and converted to a synthetic
// STRICT_FAIL outcome.
//
// # Basic Usage
//
//	reg, err := rules.NewWithDefaults(logger)
//	if err != nil {
//	    return err
//	}
//
//	result := reg.ExecuteRules(ctx, &rules.Context{
//	    EnterpriseID: "ent-42",
//	    Input: map[string]any{
//	        "toolName":  "summarizer",
//	        "dataTypes": []any{"personal_data"},
//	    },
//	})
//
//	if result.Overall == rules.StrictFail {
//	    // block the usage event
//	}
//
// # Concurrency
//
// The registry is safe for concurrent use. Mutations (AddRule, RemoveRule,
// SetRuleEnabled) take a write lock; ExecuteRules snapshots the applicable
// rules under a read lock and evaluates against the snapshot, so a concurrent
// mutation never changes the rule set mid-evaluation.
package rules
