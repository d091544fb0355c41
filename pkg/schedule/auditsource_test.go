package schedule

import (
	"context"
	"testing"
	"time"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/risk"
)

func storeEvaluation(t *testing.T, storage audit.Storage, toolID, outcome string, at time.Time) {
	t.Helper()
	err := storage.Store(context.Background(), &audit.Record{
		ID:         toolID + "-" + outcome + at.String(),
		Kind:       audit.KindEvaluation,
		ToolID:     toolID,
		Outcome:    outcome,
		RecordedAt: at,
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
}

func TestAuditSourceGroupsByTool(t *testing.T) {
	storage := audit.NewMemoryStorage()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	storeEvaluation(t, storage, "chatgpt", "STRICT_FAIL", base)
	storeEvaluation(t, storage, "copilot", "STRICT_PASS", base.Add(time.Minute))
	storeEvaluation(t, storage, "chatgpt", "SOFT_WARN", base.Add(2*time.Minute))

	// Non-evaluation and unattributed records must be ignored.
	if err := storage.Store(context.Background(), &audit.Record{
		ID: "score-1", Kind: audit.KindRiskScore, ToolID: "chatgpt", Outcome: "high",
	}); err != nil {
		t.Fatalf("store: %v", err)
	}
	storeEvaluation(t, storage, "", "STRICT_FAIL", base.Add(3*time.Minute))

	source := NewAuditSource(storage)
	batches, err := source.PendingBatches(context.Background())
	if err != nil {
		t.Fatalf("pending batches: %v", err)
	}

	if len(batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(batches))
	}

	byTool := make(map[string]Batch)
	for _, b := range batches {
		byTool[b.ToolID] = b
	}

	chatgpt, ok := byTool["chatgpt"]
	if !ok {
		t.Fatal("missing chatgpt batch")
	}
	if len(chatgpt.Atoms) != 2 {
		t.Fatalf("chatgpt atoms = %d, want 2", len(chatgpt.Atoms))
	}
	severities := map[risk.Severity]bool{}
	for _, atom := range chatgpt.Atoms {
		severities[atom.Severity] = true
		if atom.EventType != "policy_evaluation" {
			t.Errorf("event type = %q", atom.EventType)
		}
	}
	if !severities[risk.SeverityViolation] || !severities[risk.SeverityWarning] {
		t.Errorf("severities = %v, want violation and warning", severities)
	}

	copilot := byTool["copilot"]
	if len(copilot.Atoms) != 1 || copilot.Atoms[0].Severity != risk.SeverityInfo {
		t.Errorf("copilot atoms = %+v, want one info atom", copilot.Atoms)
	}

	if chatgpt.TimeWindow != "24h" {
		t.Errorf("time window = %q, want 24h", chatgpt.TimeWindow)
	}
}

func TestAuditSourceEmptyStorage(t *testing.T) {
	source := NewAuditSource(audit.NewMemoryStorage())

	batches, err := source.PendingBatches(context.Background())
	if err != nil {
		t.Fatalf("pending batches: %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("batches = %d, want 0", len(batches))
	}
}
