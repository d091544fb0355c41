package audit

import (
	"context"
	"encoding/json"
	"time"
)

// Kind identifies which engine operation produced a record.
type Kind string

const (
	KindEvaluation    Kind = "evaluation"
	KindRiskScore     Kind = "risk_score"
	KindHarmonization Kind = "harmonization"
)

// Record is one audited decision.
type Record struct {
	// ID is a unique record identifier assigned by the recorder.
	ID string `json:"id"`

	// Kind names the operation audited.
	Kind Kind `json:"kind"`

	// EnterpriseID identifies the requesting enterprise, when known.
	EnterpriseID string `json:"enterprise_id,omitempty"`

	// ToolID identifies the tool the decision concerns, when known.
	ToolID string `json:"tool_id,omitempty"`

	// Outcome is a short operation-specific summary: the overall outcome
	// for evaluations, the risk level for scores, the strategy for
	// harmonizations.
	Outcome string `json:"outcome"`

	// Payload is the full decision document as returned to the caller.
	Payload json.RawMessage `json:"payload,omitempty"`

	// RecordedAt is when the recorder accepted the record.
	RecordedAt time.Time `json:"recorded_at"`
}

// Storage persists audit records.
type Storage interface {
	// Store persists one record.
	Store(ctx context.Context, record *Record) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*Record, error)

	// Close releases any resources held by the backend.
	Close() error
}
