package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	enterprise_id TEXT NOT NULL DEFAULT '',
	tool_id TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	payload TEXT,
	recorded_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_recorded_at ON audit_records(recorded_at);
CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_records(kind);
`

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger

	mu         sync.RWMutex
	storeStmt  *sql.Stmt
	recentStmt *sql.Stmt
}

// NewSQLiteStorage creates a SQLite audit storage backend. It initializes
// the schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger.With("component", "audit.storage.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("audit storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}

	var err error
	s.storeStmt, err = s.db.Prepare(`
		INSERT INTO audit_records (id, kind, enterprise_id, tool_id, outcome, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return NewStorageError("sqlite", "prepare_store", err)
	}

	s.recentStmt, err = s.db.Prepare(`
		SELECT id, kind, enterprise_id, tool_id, outcome, payload, recorded_at
		FROM audit_records
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`)
	if err != nil {
		return NewStorageError("sqlite", "prepare_recent", err)
	}

	return nil
}

// Store persists one record.
func (s *SQLiteStorage) Store(ctx context.Context, record *Record) error {
	if record == nil {
		return NewStorageError("sqlite", "store", fmt.Errorf("record cannot be nil"))
	}
	if record.ID == "" {
		return NewStorageError("sqlite", "store", fmt.Errorf("record id cannot be empty"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var payload any
	if record.Payload != nil {
		payload = string(record.Payload)
	}

	_, err := s.storeStmt.ExecContext(ctx,
		record.ID,
		string(record.Kind),
		record.EnterpriseID,
		record.ToolID,
		record.Outcome,
		payload,
		record.RecordedAt.UnixNano(),
	)
	if err != nil {
		return NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Recent returns up to limit records, newest first.
func (s *SQLiteStorage) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, NewStorageError("sqlite", "recent", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var (
			record     Record
			kind       string
			payload    sql.NullString
			recordedAt int64
		)
		if err := rows.Scan(&record.ID, &kind, &record.EnterpriseID, &record.ToolID,
			&record.Outcome, &payload, &recordedAt); err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		record.Kind = Kind(kind)
		if payload.Valid {
			record.Payload = []byte(payload.String)
		}
		record.RecordedAt = time.Unix(0, recordedAt)
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "iterate", err)
	}

	return records, nil
}

// Close releases resources held by the backend.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storeStmt != nil {
		s.storeStmt.Close()
	}
	if s.recentStmt != nil {
		s.recentStmt.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
