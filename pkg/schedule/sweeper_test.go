package schedule

import (
	"context"
	"testing"
	"time"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/risk"
)

type staticSource struct {
	batches []Batch
}

func (s *staticSource) PendingBatches(context.Context) ([]Batch, error) {
	return s.batches, nil
}

func criticalAtoms(n int) []risk.Atom {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	atoms := make([]risk.Atom, n)
	for i := range atoms {
		atoms[i] = risk.Atom{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			EventType: "policy_violation",
			Severity:  risk.SeverityCritical,
			ToolID:    "chatgpt",
		}
	}
	return atoms
}

func TestRunSweepAuditsEachBatch(t *testing.T) {
	storage := audit.NewMemoryStorage()
	recorder := audit.NewRecorder(storage, nil, nil)
	scorer := risk.NewScorer(nil, nil, nil)

	source := &staticSource{batches: []Batch{
		{ToolID: "chatgpt", Region: "EU", TimeWindow: "24h", Atoms: criticalAtoms(20)},
		{ToolID: "copilot", Region: "US", TimeWindow: "24h", Atoms: nil},
	}}

	sweeper := NewSweeper(source, scorer, recorder, nil, &Config{}, nil)
	sweeper.runSweep(context.Background())

	if err := recorder.Close(); err != nil {
		t.Fatalf("close recorder: %v", err)
	}

	records, err := storage.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("audited = %d records, want 2", len(records))
	}
	for _, record := range records {
		if record.Kind != audit.KindRiskScore {
			t.Errorf("kind = %q, want %q", record.Kind, audit.KindRiskScore)
		}
		if len(record.Payload) == 0 {
			t.Error("payload missing")
		}
	}
}

func TestRunRetentionPrunesOldDecisions(t *testing.T) {
	store := history.NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	now := time.Now()
	old := history.Decision{Outcome: history.ApprovedOutcome, DecidedAt: now.AddDate(0, 0, -120)}
	fresh := history.Decision{Outcome: history.ApprovedOutcome, DecidedAt: now}
	for _, d := range []history.Decision{old, fresh} {
		if err := store.RecordDecision(ctx, d); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	sweeper := NewSweeper(&staticSource{}, risk.NewScorer(nil, nil, nil), nil, store,
		&Config{RetentionDays: 90}, nil)
	sweeper.runRetention(ctx)

	_, total, err := store.ApprovalStats(ctx, "", now.AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if total != 1 {
		t.Errorf("remaining = %d decisions, want 1", total)
	}
}

func TestStartValidatesSchedules(t *testing.T) {
	scorer := risk.NewScorer(nil, nil, nil)

	t.Run("invalid sweep cron", func(t *testing.T) {
		sweeper := NewSweeper(&staticSource{}, scorer, nil, nil,
			&Config{SweepSchedule: "not a cron"}, nil)
		if err := sweeper.Start(context.Background()); err == nil {
			t.Error("invalid cron accepted")
		}
	})

	t.Run("empty schedules are a no-op", func(t *testing.T) {
		sweeper := NewSweeper(&staticSource{}, scorer, nil, nil, &Config{}, nil)
		if err := sweeper.Start(context.Background()); err != nil {
			t.Fatalf("start: %v", err)
		}
		if sweeper.IsRunning() {
			t.Error("sweeper running with no schedules")
		}
	})

	t.Run("valid schedule runs and stops", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sweeper := NewSweeper(&staticSource{}, scorer, nil, nil,
			&Config{SweepSchedule: "0 * * * *"}, nil)
		if err := sweeper.Start(ctx); err != nil {
			t.Fatalf("start: %v", err)
		}
		if !sweeper.IsRunning() {
			t.Error("sweeper not running after start")
		}
		if sweeper.NextRun() == nil {
			t.Error("no next run scheduled")
		}

		sweeper.Stop()
		if sweeper.IsRunning() {
			t.Error("sweeper still running after stop")
		}
	})
}
