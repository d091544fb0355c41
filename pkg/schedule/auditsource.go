package schedule

import (
	"context"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/risk"
)

// AuditSource derives sweep batches from recent audit records. Each audited
// evaluation becomes one telemetry atom; atoms are grouped per tool so every
// recently active tool gets re-scored.
type AuditSource struct {
	storage audit.Storage

	// Limit caps how many recent records one sweep considers. Default: 1000.
	Limit int

	// Region is the regional weighting applied to sweep scores.
	Region string

	// TimeWindow is the observation window label for sweep batches.
	// Default: "24h".
	TimeWindow string
}

// NewAuditSource creates an atom source backed by audit storage.
func NewAuditSource(storage audit.Storage) *AuditSource {
	return &AuditSource{
		storage:    storage,
		Limit:      1000,
		TimeWindow: "24h",
	}
}

// PendingBatches groups the recent audited evaluations by tool. Records
// without a tool ID cannot be attributed and are skipped.
func (s *AuditSource) PendingBatches(ctx context.Context) ([]Batch, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = 1000
	}

	records, err := s.storage.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	byTool := make(map[string][]risk.Atom)
	var order []string

	for _, record := range records {
		if record.Kind != audit.KindEvaluation || record.ToolID == "" {
			continue
		}

		if _, seen := byTool[record.ToolID]; !seen {
			order = append(order, record.ToolID)
		}
		byTool[record.ToolID] = append(byTool[record.ToolID], risk.Atom{
			Timestamp: record.RecordedAt,
			EventType: "policy_evaluation",
			Severity:  severityForOutcome(record.Outcome),
			ToolID:    record.ToolID,
		})
	}

	window := s.TimeWindow
	if window == "" {
		window = "24h"
	}

	batches := make([]Batch, 0, len(order))
	for _, toolID := range order {
		batches = append(batches, Batch{
			ToolID:     toolID,
			Region:     s.Region,
			TimeWindow: window,
			Atoms:      byTool[toolID],
		})
	}
	return batches, nil
}

// severityForOutcome maps an evaluation outcome to telemetry severity.
// Failures are violations, warnings stay warnings, everything else is
// informational.
func severityForOutcome(outcome string) risk.Severity {
	switch outcome {
	case "STRICT_FAIL":
		return risk.SeverityViolation
	case "SOFT_WARN":
		return risk.SeverityWarning
	default:
		return risk.SeverityInfo
	}
}

var _ AtomSource = (*AuditSource)(nil)
