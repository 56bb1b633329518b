package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName         = "sqlite"
	maxAttempts        = 5
	defaultBusyTimeout = 2 * time.Second
)

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

// Open creates or opens the history database at path and applies pending
// migrations.
func Open(path string, busyTimeout time.Duration) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	// busy_timeout + WAL reduce lock conflicts while watch mode keeps writing.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		cleanPath, busyTimeout.Milliseconds())
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun writes a run and its matches in one transaction. Saving the same
// run id again replaces the earlier rows.
func (s *Store) SaveRun(run Run, matches []Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id must not be empty")
	}
	run.ProjectKey = normalizeProjectKey(run.ProjectKey)
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	return s.withRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM matches WHERE run_id = ?`, run.ID); err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO runs (run_id, project_key, ts_utc, files, matches, failures)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  project_key=excluded.project_key,
  ts_utc=excluded.ts_utc,
  files=excluded.files,
  matches=excluded.matches,
  failures=excluded.failures
`, run.ID, run.ProjectKey, run.Timestamp.UTC().Format(time.RFC3339Nano), run.Files, run.Matches, run.Failures); err != nil {
			_ = tx.Rollback()
			return err
		}

		stmt, err := tx.Prepare(`
INSERT INTO matches (run_id, path, line, "column", kind, component, local_name)
VALUES (?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()
		for _, m := range matches {
			if _, err := stmt.Exec(run.ID, m.Path, m.Line, m.Column, m.Kind, m.Component, m.LocalName); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadRuns returns the runs of projectKey recorded at or after since, oldest
// first. A zero since returns every run.
func (s *Store) LoadRuns(projectKey string, since time.Time) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT run_id, project_key, ts_utc, files, matches, failures
FROM runs
WHERE project_key = ?`
	args := []any{normalizeProjectKey(projectKey)}
	if !since.IsZero() {
		query += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " ORDER BY ts_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run   Run
			tsRaw string
		)
		if err := rows.Scan(&run.ID, &run.ProjectKey, &tsRaw, &run.Files, &run.Matches, &run.Failures); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadMatches returns the matches of one run ordered by path and position.
func (s *Store) LoadMatches(runID string) ([]Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load matches", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT run_id, path, line, "column", kind, component, local_name
FROM matches
WHERE run_id = ?
ORDER BY path ASC, line ASC, "column" ASC
`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]Match, 0)
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.RunID, &m.Path, &m.Line, &m.Column, &m.Kind, &m.Component, &m.LocalName); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rows: %w", err)
	}
	return matches, nil
}

func normalizeProjectKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func IsCorruptError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") || strings.Contains(msg, "not a database") || errors.Is(err, os.ErrInvalid)
}
