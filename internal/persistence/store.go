package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// TaskReport is the recorded deliverable of one settled task. It is an audit
// record: the workflow engine never reads reports back, and a new process
// cannot resume a workflow from them.
type TaskReport struct {
	TaskID      string
	Department  string
	Description string
	Status      string // "completed" or "failed"
	Result      string
	Error       string
	CreatedAt   time.Time
}

// AgentMessage is one recorded inter-agent message.
type AgentMessage struct {
	Sender    string
	Recipient string
	Content   string
	Timestamp time.Time
}

// Store defines the session-deliverable persistence interface.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, project, mode string) (string, error)

	// Task reports
	SaveTaskReport(ctx context.Context, sessionID string, report TaskReport) error
	ListTaskReports(ctx context.Context, sessionID string) ([]TaskReport, error)

	// Inter-agent messages
	SaveAgentMessage(ctx context.Context, sessionID string, msg AgentMessage) error
	ListAgentMessages(ctx context.Context, sessionID string) ([]AgentMessage, error)

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLite-backed store at the given path.
// Creates parent directories if needed. Enables WAL mode, foreign keys, and
// a busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	return open(ctx, connStr)
}

// NewMemoryStore creates an in-memory store for testing.
// Uses a shared cache so multiple connections see the same database.
func NewMemoryStore(ctx context.Context) (*SQLiteStore, error) {
	return open(ctx, "file::memory:?mode=memory&cache=shared")
}

func open(ctx context.Context, connStr string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite needs foreign keys enabled via PRAGMA, not the
	// connection string.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.SetMaxOpenConns(2)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
