package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// storeFactories lets every behavior test run against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) Store {
			store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
			if err != nil {
				t.Fatalf("open sqlite store: %v", err)
			}
			return store
		},
	}
}

func TestApprovalStats(t *testing.T) {
	now := time.Now()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			decisions := []Decision{
				{ToolID: "chatgpt-enterprise", Outcome: ApprovedOutcome, DecidedAt: now.Add(-1 * time.Hour)},
				{ToolID: "chatgpt-enterprise", Outcome: ApprovedOutcome, DecidedAt: now.Add(-2 * time.Hour)},
				{ToolID: "chatgpt-enterprise", Outcome: DeniedOutcome, DecidedAt: now.Add(-3 * time.Hour)},
				{ToolID: "chatgpt-enterprise", Outcome: WarnedOutcome, DecidedAt: now.Add(-4 * time.Hour)},
				{ToolID: "copilot", Outcome: ApprovedOutcome, DecidedAt: now.Add(-5 * time.Hour)},
				// Outside the queried window.
				{ToolID: "chatgpt-enterprise", Outcome: DeniedOutcome, DecidedAt: now.Add(-48 * time.Hour)},
			}
			for _, d := range decisions {
				if err := store.RecordDecision(ctx, d); err != nil {
					t.Fatalf("record: %v", err)
				}
			}

			since := now.Add(-24 * time.Hour)

			approved, total, err := store.ApprovalStats(ctx, "chatgpt-enterprise", since)
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			if approved != 2 || total != 4 {
				t.Errorf("tool stats = %d/%d, want 2/4", approved, total)
			}

			// Empty toolID spans all tools.
			approved, total, err = store.ApprovalStats(ctx, "", since)
			if err != nil {
				t.Fatalf("stats all: %v", err)
			}
			if approved != 3 || total != 5 {
				t.Errorf("all-tool stats = %d/%d, want 3/5", approved, total)
			}

			// Unknown tool yields an empty history, not an error.
			approved, total, err = store.ApprovalStats(ctx, "unknown", since)
			if err != nil {
				t.Fatalf("stats unknown: %v", err)
			}
			if approved != 0 || total != 0 {
				t.Errorf("unknown-tool stats = %d/%d, want 0/0", approved, total)
			}
		})
	}
}

func TestCleanup(t *testing.T) {
	now := time.Now()

	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()
			ctx := context.Background()

			ages := []time.Duration{1 * time.Hour, 10 * 24 * time.Hour, 40 * 24 * time.Hour, 60 * 24 * time.Hour}
			for _, age := range ages {
				d := Decision{ToolID: "t", Outcome: ApprovedOutcome, DecidedAt: now.Add(-age)}
				if err := store.RecordDecision(ctx, d); err != nil {
					t.Fatalf("record: %v", err)
				}
			}

			deleted, err := store.Cleanup(ctx, now.Add(-30*24*time.Hour))
			if err != nil {
				t.Fatalf("cleanup: %v", err)
			}
			if deleted != 2 {
				t.Errorf("deleted = %d, want 2", deleted)
			}

			_, total, err := store.ApprovalStats(ctx, "", now.Add(-365*24*time.Hour))
			if err != nil {
				t.Fatalf("stats: %v", err)
			}
			if total != 2 {
				t.Errorf("remaining = %d, want 2", total)
			}
		})
	}
}

func TestRecordValidation(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			defer store.Close()

			err := store.RecordDecision(context.Background(), Decision{ToolID: "t"})
			if err == nil {
				t.Error("empty outcome accepted")
			}
		})
	}
}

func TestClosedStore(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			if err := store.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			err := store.RecordDecision(context.Background(), Decision{Outcome: ApprovedOutcome})
			if err == nil {
				t.Error("record on closed store succeeded")
			}
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()
	now := time.Now()

	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	d := Decision{ToolID: "t", Outcome: ApprovedOutcome, DecidedAt: now}
	if err := store.RecordDecision(ctx, d); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	approved, total, err := reopened.ApprovalStats(ctx, "t", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if approved != 1 || total != 1 {
		t.Errorf("stats after reopen = %d/%d, want 1/1", approved, total)
	}
}
