package risk

import "time"

// Severity classifies a single telemetry atom.
type Severity string

const (
	SeverityInfo      Severity = "info"
	SeverityWarning   Severity = "warning"
	SeverityViolation Severity = "violation"
	SeverityCritical  Severity = "critical"
)

// ValidSeverity reports whether s is one of the known severities.
// An empty severity is valid and treated as info.
func ValidSeverity(s Severity) bool {
	switch s {
	case "", SeverityInfo, SeverityWarning, SeverityViolation, SeverityCritical:
		return true
	default:
		return false
	}
}

// Atom is one immutable telemetry record describing a single observed event
// (tool usage, violation, etc.). Batches may arrive ordered or unordered.
type Atom struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// EventType names the observed event (e.g., "tool_invocation").
	EventType string `json:"event_type"`

	// Severity classifies the event. Empty is treated as info.
	Severity Severity `json:"severity,omitempty"`

	// ToolID identifies the tool that produced the event, if known.
	ToolID string `json:"tool_id,omitempty"`

	// Metadata carries arbitrary event details.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Options tunes a single scoring call.
type Options struct {
	// Region selects the regional weighting multiplier (EU, US, APAC).
	// Empty defaults to US. Unknown regions use the conservative
	// "other" weight.
	Region string `json:"region,omitempty"`

	// ToolID filters the compliance-history lookup to one tool.
	ToolID string `json:"toolId,omitempty"`

	// TimeWindow is the observation window the atoms cover, as "Nh" or
	// "Nd" (e.g., "24h", "7d"). Absent or unparseable values default
	// to 24h.
	TimeWindow string `json:"timeWindow,omitempty"`
}

// Level is the coarse risk classification derived from the total score.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Breakdown lists the per-component contributions to the total score.
type Breakdown struct {
	Frequency  int `json:"frequency"`
	Severity   int `json:"severity"`
	Pattern    int `json:"pattern"`
	Compliance int `json:"compliance"`
}

// Factor is one materially contributing risk component, surfaced for
// explainability.
type Factor struct {
	// Category is the component name (frequency, severity, pattern,
	// compliance).
	Category string `json:"category"`

	// Contribution is the component's numeric score.
	Contribution int `json:"contribution"`

	// Description is a human-readable cause.
	Description string `json:"description"`
}

// Metadata describes the inputs a score was computed from.
type Metadata struct {
	AtomsAnalyzed int    `json:"atomsAnalyzed"`
	TimeWindow    string `json:"timeWindow"`
	Region        string `json:"region,omitempty"`
	ToolID        string `json:"toolId,omitempty"`
}

// Score is the composite risk assessment for one telemetry batch.
type Score struct {
	// Total is the regional-weighted component sum, clamped to [0,100].
	Total int `json:"total"`

	// Breakdown holds the unweighted per-component scores.
	Breakdown Breakdown `json:"breakdown"`

	// RiskLevel is low (<31), medium (31-60), high (61-80), or
	// critical (>=81).
	RiskLevel Level `json:"riskLevel"`

	// Factors are the top contributing components, highest first, at most 5.
	Factors []Factor `json:"factors"`

	// Recommendations are deduplicated operator actions, at most 5.
	Recommendations []string `json:"recommendations"`

	// Metadata records the scoring inputs.
	Metadata Metadata `json:"metadata"`
}
