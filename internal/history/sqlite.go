package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) the history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// every connection to :memory: would otherwise see its own database
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		sidebars TEXT,
		problems INTEGER NOT NULL DEFAULT 0,
		content_digest TEXT,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record inserts b.
func (s *SQLiteStore) Record(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sidebarsJSON, err := json.Marshal(b.Sidebars)
	if err != nil {
		return fmt.Errorf("marshal sidebars: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, duration_ms, mode, outcome, sidebars, problems, content_digest, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.StartedAt.UnixMilli(), b.Duration.Milliseconds(), b.Mode, b.Outcome,
		string(sidebarsJSON), b.Problems, b.ContentDigest, b.Error,
	)
	if err != nil {
		return fmt.Errorf("insert build %s: %w", b.ID, err)
	}
	return nil
}

// Recent returns up to limit builds, newest first. A non-positive limit
// returns every build.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started_at, duration_ms, mode, outcome, sidebars, problems, content_digest, error
		FROM builds ORDER BY started_at DESC, seq DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	return scanBuilds(rows)
}

// Latest returns the newest build.
func (s *SQLiteStore) Latest(ctx context.Context) (Build, error) {
	builds, err := s.Recent(ctx, 1)
	if err != nil {
		return Build{}, err
	}
	if len(builds) == 0 {
		return Build{}, ErrNoBuilds
	}
	return builds[0], nil
}

func scanBuilds(rows *sql.Rows) ([]Build, error) {
	var builds []Build
	for rows.Next() {
		var (
			b            Build
			startedMS    int64
			durationMS   int64
			sidebarsJSON sql.NullString
			digest       sql.NullString
			errText      sql.NullString
		)
		err := rows.Scan(&b.ID, &startedMS, &durationMS, &b.Mode, &b.Outcome, &sidebarsJSON, &b.Problems, &digest, &errText)
		if err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		b.StartedAt = time.UnixMilli(startedMS).UTC()
		b.Duration = time.Duration(durationMS) * time.Millisecond
		b.ContentDigest = digest.String
		b.Error = errText.String
		if sidebarsJSON.Valid && sidebarsJSON.String != "" && sidebarsJSON.String != "null" {
			if err := json.Unmarshal([]byte(sidebarsJSON.String), &b.Sidebars); err != nil {
				return nil, fmt.Errorf("unmarshal sidebars of %s: %w", b.ID, err)
			}
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return builds, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)

// IsNoBuilds reports whether err means the history is empty.
func IsNoBuilds(err error) bool { return errors.Is(err, ErrNoBuilds) }
