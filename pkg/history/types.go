package history

import (
	"context"
	"errors"
	"time"
)

// Decision outcomes as recorded. These mirror the evaluator's overall
// outcome values; only ApprovedOutcome counts toward the approval rate.
const (
	ApprovedOutcome = "STRICT_PASS"
	WarnedOutcome   = "SOFT_WARN"
	DeniedOutcome   = "STRICT_FAIL"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history: store is closed")

// Decision is one recorded policy decision.
type Decision struct {
	// ToolID identifies the tool the decision was about. May be empty for
	// decisions not tied to a specific tool.
	ToolID string `json:"tool_id,omitempty"`

	// EnterpriseID identifies the requesting enterprise.
	EnterpriseID string `json:"enterprise_id,omitempty"`

	// Outcome is the overall decision outcome.
	Outcome string `json:"outcome"`

	// DecidedAt is when the decision was made. Zero means now.
	DecidedAt time.Time `json:"decided_at"`
}

// Store records decisions and serves approval statistics.
type Store interface {
	// RecordDecision persists one decision.
	RecordDecision(ctx context.Context, decision Decision) error

	// ApprovalStats returns how many decisions since the given time were
	// approvals, and how many there were in total. A toolID of "" means
	// all tools.
	ApprovalStats(ctx context.Context, toolID string, since time.Time) (approved, total int, err error)

	// Cleanup removes decisions older than the given time and reports how
	// many were deleted.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
