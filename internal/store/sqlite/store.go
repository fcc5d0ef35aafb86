// Package sqlite provides the SQLite-backed persistence layer: graphs,
// jobs, audit log, credit ledger, and the durable queue table.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// initialSchema is the SQL schema for initializing a new database.
const initialSchema = `
-- Graphs table
CREATE TABLE IF NOT EXISTS graphs (
    id            TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    critical_path TEXT NOT NULL DEFAULT '[]',
    makespan      REAL NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_graphs_user_id ON graphs(user_id);

-- Nodes table, one row per task node
CREATE TABLE IF NOT EXISTS nodes (
    graph_id          TEXT NOT NULL REFERENCES graphs(id) ON DELETE CASCADE,
    id                TEXT NOT NULL,
    duration_estimate REAL NOT NULL DEFAULT 0 CHECK (duration_estimate >= 0),
    priority          INTEGER NOT NULL DEFAULT 1 CHECK (priority BETWEEN 0 AND 3),
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK (status IN ('pending', 'in_progress', 'completed', 'blocked')),
    layer             INTEGER NOT NULL DEFAULT 0,
    position          INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (graph_id, id)
);

-- Node dependencies table (DAG edges)
CREATE TABLE IF NOT EXISTS node_dependencies (
    graph_id   TEXT NOT NULL,
    node_id    TEXT NOT NULL,
    depends_on TEXT NOT NULL,
    ord        INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (graph_id, node_id, depends_on),
    CHECK (node_id != depends_on),
    FOREIGN KEY (graph_id, node_id) REFERENCES nodes(graph_id, id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_node_dependencies_node ON node_dependencies(graph_id, node_id);

-- Optimization jobs table
CREATE TABLE IF NOT EXISTS jobs (
    id           TEXT PRIMARY KEY,
    graph_id     TEXT NOT NULL,
    user_id      TEXT NOT NULL,
    backend      TEXT NOT NULL DEFAULT 'solver',
    status       TEXT NOT NULL DEFAULT 'queued'
                 CHECK (status IN ('queued', 'running', 'completed', 'failed', 'timed_out')),
    priority     INTEGER NOT NULL DEFAULT 1 CHECK (priority BETWEEN 0 AND 3),
    result       TEXT,
    failure      TEXT,
    credit_cost  INTEGER NOT NULL DEFAULT 0,
    created_at   TEXT NOT NULL,
    started_at   TEXT,
    completed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_jobs_graph_id ON jobs(graph_id);
CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

-- Durable queue messages table. Timestamps are unix nanoseconds so the
-- claim query can compare them in SQL.
CREATE TABLE IF NOT EXISTS queue_messages (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id       TEXT NOT NULL,
    locked_by    TEXT,
    locked_until INTEGER,
    retry_count  INTEGER NOT NULL DEFAULT 0,
    dead         INTEGER NOT NULL DEFAULT 0,
    available_at INTEGER NOT NULL,
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queue_messages_available ON queue_messages(dead, available_at);

-- Audit log table
CREATE TABLE IF NOT EXISTS audit_log (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id      TEXT NOT NULL,
    transition  TEXT NOT NULL,
    metadata    TEXT,
    recorded_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_job_id ON audit_log(job_id);

-- Credit ledger table
CREATE TABLE IF NOT EXISTS credit_accounts (
    user_id    TEXT PRIMARY KEY,
    balance    INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
    updated_at TEXT NOT NULL
);
`

// Store owns the database connection and hands out repositories.
type Store struct {
	db      *sql.DB
	graphs  *GraphRepository
	jobs    *JobRepository
	audit   *AuditRepository
	credits *CreditRepository
}

// Open opens (or creates) the database at dsn and initializes the schema.
// The dsn can be a file path or ":memory:" for an in-memory database.
// New credit accounts start with initialGrant credits.
func Open(dsn string, initialGrant int64) (*Store, error) {
	connStr := dsn
	if !strings.Contains(dsn, "?") {
		connStr += "?"
	} else {
		connStr += "&"
	}
	connStr += "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_synchronous=NORMAL"

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each pooled connection to ":memory:" would get its own database, so
	// in-memory stores are pinned to a single connection.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(initialSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{
		db:      db,
		graphs:  &GraphRepository{db: db},
		jobs:    &JobRepository{db: db},
		audit:   &AuditRepository{db: db},
		credits: &CreditRepository{db: db, initialGrant: initialGrant},
	}, nil
}

// DB exposes the underlying connection for collaborators that manage their
// own tables (the queue).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Graphs returns the graph repository.
func (s *Store) Graphs() *GraphRepository {
	return s.graphs
}

// Jobs returns the job repository.
func (s *Store) Jobs() *JobRepository {
	return s.jobs
}

// Audit returns the audit log repository.
func (s *Store) Audit() *AuditRepository {
	return s.audit
}

// Credits returns the credit ledger repository.
func (s *Store) Credits() *CreditRepository {
	return s.credits
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
