package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite for persistence. It is suitable
// for single-instance deployments where the approval history must survive
// restarts.
//
// SQLiteStore uses a write-ahead log (WAL) for better concurrent performance
// and periodic checkpointing to balance write performance with durability.
type SQLiteStore struct {
	db                 *sql.DB
	dbPath             string
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closed             bool
	closeOnce          sync.Once

	recordStmt  *sql.Stmt
	statsStmt   *sql.Stmt
	cleanupStmt *sql.Stmt
}

// SQLiteStoreConfig configures the SQLite store.
type SQLiteStoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewSQLiteStore creates a SQLite decision store with default settings.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	return NewSQLiteStoreWithConfig(SQLiteStoreConfig{DBPath: dbPath})
}

// NewSQLiteStoreWithConfig creates a SQLite store with custom configuration.
func NewSQLiteStoreWithConfig(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{
		db:                 db,
		dbPath:             cfg.DBPath,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := store.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go store.checkpointLoop()

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tool_id TEXT NOT NULL DEFAULT '',
		enterprise_id TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		decided_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_tool_time ON decisions(tool_id, decided_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_time ON decisions(decided_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.recordStmt, err = s.db.Prepare(`
		INSERT INTO decisions (tool_id, enterprise_id, outcome, decided_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}

	// toolID '' matches all tools.
	s.statsStmt, err = s.db.Prepare(`
		SELECT
			COUNT(CASE WHEN outcome = ? THEN 1 END),
			COUNT(*)
		FROM decisions
		WHERE decided_at >= ? AND (? = '' OR tool_id = ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stats statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`
		DELETE FROM decisions WHERE decided_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// RecordDecision persists one decision.
func (s *SQLiteStore) RecordDecision(ctx context.Context, decision Decision) error {
	if decision.Outcome == "" {
		return fmt.Errorf("outcome cannot be empty")
	}

	decidedAt := decision.DecidedAt
	if decidedAt.IsZero() {
		decidedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.recordStmt.ExecContext(ctx,
		decision.ToolID,
		decision.EnterpriseID,
		decision.Outcome,
		decidedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}

	return nil
}

// ApprovalStats returns the approval counts since the given time.
func (s *SQLiteStore) ApprovalStats(ctx context.Context, toolID string, since time.Time) (approved, total int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, 0, ErrClosed
	}

	err = s.statsStmt.QueryRowContext(ctx,
		ApprovedOutcome, since.Unix(), toolID, toolID,
	).Scan(&approved, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query approval stats: %w", err)
	}

	return approved, total, nil
}

// Cleanup removes decisions older than the given time.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(deleted), nil
}

// Close releases resources held by the store. Close is idempotent.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		if s.recordStmt != nil {
			s.recordStmt.Close()
		}
		if s.statsStmt != nil {
			s.statsStmt.Close()
		}
		if s.cleanupStmt != nil {
			s.cleanupStmt.Close()
		}

		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = s.db.Close()
		}
	})

	return closeErr
}

func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
