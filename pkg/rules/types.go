package rules

import "time"

// Outcome is the verdict of a single rule evaluation, or of a whole
// validation run after aggregation.
type Outcome string

const (
	// StrictPass indicates the rule's requirement is satisfied.
	StrictPass Outcome = "STRICT_PASS"

	// StrictFail indicates a hard violation; the overall result fails.
	StrictFail Outcome = "STRICT_FAIL"

	// SoftWarn indicates a non-blocking concern that requires human review.
	SoftWarn Outcome = "SOFT_WARN"
)

// Category classifies a rule and drives applicability gating.
type Category string

const (
	// CategoryCompliance rules inspect enterprise-level regulatory facts.
	// They are inapplicable when the Context has no EnterpriseID.
	CategoryCompliance Category = "compliance"

	// CategorySecurity rules inspect the request input.
	// They are inapplicable when the Context has no Input.
	CategorySecurity Category = "security"

	// CategoryBusiness rules encode organizational policy. Always applicable.
	CategoryBusiness Category = "business"

	// CategoryTechnical rules enforce processing constraints. Always applicable.
	CategoryTechnical Category = "technical"
)

// Severity describes how serious a rule violation is. It is catalog metadata
// only; aggregation depends on outcomes, not severities.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Validator is a pure function that evaluates one rule against a Context.
// Validators must not mutate the Context and must not block.
type Validator func(ctx *Context) RuleOutcome

// Rule is one entry in the registry catalog.
type Rule struct {
	// ID uniquely identifies the rule. Re-adding an existing ID replaces
	// the rule (last write wins).
	ID string

	// Name is the human-readable rule name.
	Name string

	// Description explains what the rule checks.
	Description string

	// Category drives applicability gating (see Category constants).
	Category Category

	// Severity is catalog metadata describing violation impact.
	Severity Severity

	// Enabled controls whether the rule participates in evaluation.
	Enabled bool

	// Validator evaluates the rule against a Context.
	Validator Validator
}

// Context carries the structured facts about one evaluation request.
// It is immutable for the duration of a single ExecuteRules call.
type Context struct {
	// EnterpriseID identifies the tenant. Required for compliance rules.
	EnterpriseID string `json:"enterpriseId"`

	// PartnerID identifies the agency or partner scope, if any.
	PartnerID string `json:"partnerId,omitempty"`

	// UserID identifies the requesting user, if known.
	UserID string `json:"userId,omitempty"`

	// Timestamp is when the usage event occurred.
	Timestamp time.Time `json:"timestamp,omitempty"`

	// Input contains the request facts (toolName, dataTypes, sizeBytes, ...).
	Input map[string]any `json:"input,omitempty"`

	// ParsedDoc contains facts extracted from an uploaded document, if any.
	ParsedDoc map[string]any `json:"parsedDoc,omitempty"`
}

// InputString returns Input[key] as a string, or "" when absent or not a string.
func (c *Context) InputString(key string) string {
	if c.Input == nil {
		return ""
	}
	s, _ := c.Input[key].(string)
	return s
}

// InputBool returns Input[key] as a bool, or false when absent or not a bool.
func (c *Context) InputBool(key string) bool {
	if c.Input == nil {
		return false
	}
	b, _ := c.Input[key].(bool)
	return b
}

// InputNumber returns Input[key] as a float64, or 0 when absent or non-numeric.
// JSON decoding produces float64 for all numbers; int values from Go callers
// are accepted too.
func (c *Context) InputNumber(key string) float64 {
	if c.Input == nil {
		return 0
	}
	return asNumber(c.Input[key])
}

// InputStrings returns Input[key] as a string slice. Both []string and
// []any-of-string (the JSON decoding shape) are accepted.
func (c *Context) InputStrings(key string) []string {
	if c.Input == nil {
		return nil
	}
	switch v := c.Input[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// DocNumber returns ParsedDoc[key] as a float64, or 0 when absent.
func (c *Context) DocNumber(key string) float64 {
	if c.ParsedDoc == nil {
		return 0
	}
	return asNumber(c.ParsedDoc[key])
}

func asNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// RuleOutcome is the result of evaluating one rule.
type RuleOutcome struct {
	// Outcome is the verdict for this rule.
	Outcome Outcome `json:"outcome"`

	// Message explains the verdict.
	Message string `json:"message"`

	// Confidence is the validator's confidence in the verdict, in [0,1].
	Confidence float64 `json:"confidence"`

	// Applicable reports whether the rule considered itself applicable.
	Applicable bool `json:"applicable"`
}

// RuleResult is a RuleOutcome annotated with the rule's identity, as it
// appears in a ValidationResult.
type RuleResult struct {
	RuleID     string  `json:"ruleId"`
	RuleName   string  `json:"ruleName"`
	Outcome    Outcome `json:"outcome"`
	Message    string  `json:"message"`
	Confidence float64 `json:"confidence"`
	Applicable bool    `json:"applicable"`
}

// ValidationResult aggregates all rule outcomes for one evaluation request.
// It is created fresh per ExecuteRules call and never persisted by the
// engine itself.
type ValidationResult struct {
	// Overall is STRICT_FAIL if any rule failed, else SOFT_WARN if any rule
	// warned, else STRICT_PASS. An empty rule set passes.
	Overall Outcome `json:"overall"`

	// Rules contains the per-rule outcomes in evaluation order.
	Rules []RuleResult `json:"rules"`

	// Confidence is the mean confidence over all evaluated rules,
	// or 1.0 when no rule was evaluated.
	Confidence float64 `json:"confidence"`

	// HumanReviewRequired is true when any rule failed or warned, or any
	// individual confidence fell below 0.7.
	HumanReviewRequired bool `json:"humanReviewRequired"`

	// Recommendations lists "CRITICAL: ..." and "WARNING: ..." messages
	// in evaluation order.
	Recommendations []string `json:"recommendations"`
}
