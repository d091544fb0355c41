package harmonize

import (
	"encoding/json"
	"fmt"
	"time"
)

// Strategy is the conflict-resolution bias applied during harmonization.
type Strategy string

const (
	// StrategyMerge is the default balanced behavior; jurisdiction
	// contradictions resolve toward denial.
	StrategyMerge Strategy = "merge"

	// StrategyStrict favors restriction (intersection of allowances).
	StrategyStrict Strategy = "strict"

	// StrategyPermissive favors allowance (union of allowances).
	StrategyPermissive Strategy = "permissive"
)

// ParseStrategy parses a strategy string. Empty defaults to merge.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyMerge, nil
	case StrategyMerge, StrategyStrict, StrategyPermissive:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want merge, strict, or permissive)", s)
	}
}

// Rule-type names with dedicated harmonizers.
const (
	TypeJurisdiction       = "jurisdiction"
	TypeDataClassification = "data_classification"
	TypeUseCase            = "use_case"
	TypeVersionConstraint  = "version_constraint"
)

// Source tags applied to rules during harmonization.
const (
	SourcePolicyA    = "policy_a"
	SourcePolicyB    = "policy_b"
	SourceHarmonized = "harmonized"
)

// RuleSeverity describes how a policy rule violation is treated.
type RuleSeverity string

const (
	RuleSeverityError   RuleSeverity = "error"
	RuleSeverityWarning RuleSeverity = "warning"
	RuleSeverityInfo    RuleSeverity = "info"
)

// Condition is the typed payload of a policy rule, keyed by the rule type.
// Jurisdiction rules use Allowed and Denied; data-classification rules use
// Allowed only. Condition fields of unrecognized rule types are preserved
// verbatim in Extra so generic rules round-trip untouched.
type Condition struct {
	// Allowed lists permitted codes (jurisdictions, classifications, ...).
	Allowed []string

	// Denied lists forbidden codes.
	Denied []string

	// Extra holds condition fields this engine does not interpret.
	Extra map[string]any
}

// IsZero reports whether the condition carries no payload at all.
func (c Condition) IsZero() bool {
	return c.Allowed == nil && c.Denied == nil && len(c.Extra) == 0
}

// MarshalJSON emits the typed fields merged with the pass-through fields.
func (c Condition) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(c.Extra)+2)
	for k, v := range c.Extra {
		m[k] = v
	}
	if c.Allowed != nil {
		m["allowed"] = c.Allowed
	}
	if c.Denied != nil {
		m["denied"] = c.Denied
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a condition object, extracting the typed allowed and
// denied lists and preserving everything else.
func (c *Condition) UnmarshalJSON(data []byte) error {
	*c = Condition{}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("condition must be a JSON object: %w", err)
	}
	if m == nil {
		return nil
	}

	for key, value := range m {
		switch key {
		case "allowed":
			list, err := stringList(value)
			if err != nil {
				return fmt.Errorf("condition.allowed: %w", err)
			}
			c.Allowed = list
		case "denied":
			list, err := stringList(value)
			if err != nil {
				return fmt.Errorf("condition.denied: %w", err)
			}
			c.Denied = list
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]any)
			}
			c.Extra[key] = value
		}
	}
	return nil
}

func stringList(v any) ([]string, error) {
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("must be an array of strings")
	}
	out := make([]string, 0, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is not a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}

// PolicyRule is one rule in a harmonization input or output set.
type PolicyRule struct {
	// ID uniquely identifies the rule within its policy set.
	ID string `json:"id"`

	// Type names the harmonization strategy family (jurisdiction,
	// data_classification, use_case, version_constraint, or any other
	// string handled generically).
	Type string `json:"type"`

	// Condition is the typed rule payload.
	Condition Condition `json:"condition"`

	// Action is what enforcement should do when the rule applies.
	Action string `json:"action"`

	// Severity describes violation impact.
	Severity RuleSeverity `json:"severity,omitempty"`

	// Message is a human-readable rule description.
	Message string `json:"message,omitempty"`

	// Priority orders rules in the combined output (higher first).
	Priority int `json:"priority,omitempty"`

	// Source tags which policy set the rule came from. Synthesized rules
	// carry "harmonized"; input rules keep their tag or are assigned
	// policy_a / policy_b.
	Source string `json:"source,omitempty"`
}

// ConflictType classifies a detected conflict.
type ConflictType string

const (
	ConflictContradiction    ConflictType = "contradiction"
	ConflictOverlap          ConflictType = "overlap"
	ConflictPriorityMismatch ConflictType = "priority_mismatch"
)

// ConflictSeverity grades a detected conflict.
type ConflictSeverity string

const (
	ConflictSeverityHigh   ConflictSeverity = "high"
	ConflictSeverityMedium ConflictSeverity = "medium"
	ConflictSeverityLow    ConflictSeverity = "low"
)

// Conflict reports one contradiction between the two input sets. Conflicts
// are derived, read-only outputs; they never mutate the input rules.
type Conflict struct {
	Type                 ConflictType     `json:"type"`
	Severity             ConflictSeverity `json:"severity"`
	RuleA                PolicyRule       `json:"ruleA"`
	RuleB                PolicyRule       `json:"ruleB"`
	Description          string           `json:"description"`
	ResolutionSuggestion string           `json:"resolution_suggestion"`
}

// Metadata summarizes one harmonization run.
type Metadata struct {
	TotalRulesA   int       `json:"total_rules_a"`
	TotalRulesB   int       `json:"total_rules_b"`
	CombinedCount int       `json:"combined_count"`
	ConflictCount int       `json:"conflict_count"`
	Strategy      Strategy  `json:"strategy"`
	HarmonizedAt  time.Time `json:"harmonized_at"`
}

// Result is the harmonized rule set plus the conflict report.
type Result struct {
	Combined  []PolicyRule `json:"combined"`
	Conflicts []Conflict   `json:"conflicts"`
	Metadata  Metadata     `json:"metadata"`
}
