package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"dbgsh/internal/modules/command/domain"
	commandout "dbgsh/internal/modules/command/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteHistoryStore struct {
	db *sql.DB
}

func NewSQLiteHistoryStore(dbPath string) (commandout.HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteHistoryStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteHistoryStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS history (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  interp TEXT NOT NULL,
  command TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS history_session ON history (session_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) Append(ctx context.Context, entry domain.HistoryEntry) error {
	const stmt = `
INSERT INTO history (id, session_id, interp, command, created_at)
VALUES (?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		entry.ID, entry.SessionID, entry.Interp, entry.Command,
		entry.At.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryStore) Recent(ctx context.Context, sessionID string, limit int) ([]domain.HistoryEntry, error) {
	const base = `
SELECT id, session_id, interp, command, created_at FROM history
`
	query := base + `ORDER BY rowid DESC LIMIT ?;`
	args := []any{limit}
	if sessionID != "" {
		query = base + `WHERE session_id = ? ORDER BY rowid DESC LIMIT ?;`
		args = []any{sessionID, limit}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []domain.HistoryEntry{}
	for rows.Next() {
		entry := domain.HistoryEntry{}
		createdAt := ""
		if err := rows.Scan(&entry.ID, &entry.SessionID, &entry.Interp, &entry.Command, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		at, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse history timestamp: %w", err)
		}
		entry.At = at
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

func (s *SQLiteHistoryStore) Close() error {
	return s.db.Close()
}
