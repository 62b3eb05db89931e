package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides durable persistence for remembered experiences and the
// persisted mental process.
type Store interface {
	Close() error

	// Append durably writes one record. It returns only after the write
	// is committed or has definitively failed; there is no partial state.
	Append(ctx context.Context, rec Record) error

	// List returns a lazy timestamp-ascending cursor over all records
	// owned by the identity.
	List(ctx context.Context, owner string) (*Cursor, error)

	// Tail returns the most recent n records in ascending order.
	Tail(ctx context.Context, owner string, n int) ([]Record, error)

	Count(ctx context.Context, owner string) (int, error)

	// GetMode and SetMode persist the current mental process across
	// restarts. GetMode returns "" when no transition has been recorded.
	GetMode(ctx context.Context, owner string) (string, error)
	SetMode(ctx context.Context, owner, mode string) error
}

// SQLiteStore is the canonical Store implementation.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates/opens the memory database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single-process store. One shared connection serializes writers, so
	// concurrent appends cannot corrupt the log.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS memories_owner_idx ON memories(owner, created_at_ms ASC);`,
		`CREATE TABLE IF NOT EXISTS soul_state (
			owner TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			updated_at_ms INTEGER NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite schema failed on %q: %w", trimSQL(stmt), err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.Owner) == "" {
		return storageErr("append", errors.New("record owner is required"))
	}
	if rec.Content == "" {
		return storageErr("append", errors.New("record content is required"))
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, owner, content, created_at_ms) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Owner, rec.Content, rec.CreatedAt.UnixMilli())
	return storageErr("append", err)
}

func (s *SQLiteStore) List(ctx context.Context, owner string) (*Cursor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, content, created_at_ms FROM memories
		 WHERE owner = ? ORDER BY created_at_ms ASC, rowid ASC`, owner)
	if err != nil {
		return nil, storageErr("list", err)
	}
	return &Cursor{rows: rows}, nil
}

func (s *SQLiteStore) Tail(ctx context.Context, owner string, n int) ([]Record, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, content, created_at_ms FROM (
			SELECT rowid, id, owner, content, created_at_ms FROM memories
			WHERE owner = ? ORDER BY created_at_ms DESC, rowid DESC LIMIT ?
		 ) ORDER BY created_at_ms ASC, rowid ASC`, owner, n)
	if err != nil {
		return nil, storageErr("tail", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdMS int64
		if err := rows.Scan(&rec.ID, &rec.Owner, &rec.Content, &createdMS); err != nil {
			return nil, storageErr("tail", err)
		}
		rec.CreatedAt = time.UnixMilli(createdMS).UTC()
		out = append(out, rec)
	}
	return out, storageErr("tail", rows.Err())
}

func (s *SQLiteStore) Count(ctx context.Context, owner string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE owner = ?`, owner).Scan(&n)
	return n, storageErr("count", err)
}

func (s *SQLiteStore) GetMode(ctx context.Context, owner string) (string, error) {
	var mode string
	err := s.db.QueryRowContext(ctx,
		`SELECT mode FROM soul_state WHERE owner = ?`, owner).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return mode, storageErr("get mode", err)
}

func (s *SQLiteStore) SetMode(ctx context.Context, owner, mode string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO soul_state (owner, mode, updated_at_ms) VALUES (?, ?, ?)
		 ON CONFLICT(owner) DO UPDATE SET mode = excluded.mode, updated_at_ms = excluded.updated_at_ms`,
		owner, mode, time.Now().UnixMilli())
	return storageErr("set mode", err)
}

func trimSQL(sql string) string {
	line := strings.TrimSpace(sql)
	if len(line) > 96 {
		return line[:96] + "..."
	}
	return line
}
