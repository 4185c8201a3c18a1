package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"aircheck/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS segments (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    station        TEXT NOT NULL,
    filename       TEXT NOT NULL UNIQUE,
    path           TEXT,
    status         TEXT NOT NULL,
    content_digest TEXT,
    error_message  TEXT,
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_segments_status ON segments(status);
`

const recordColumns = `id, station, filename, path, status, content_digest, error_message, created_at, updated_at`

// Store manages segment journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database under the log dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(filepath.Join(cfg.Paths.LogDir, "segments.db"))
}

// OpenPath opens the journal at an explicit database path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk database location.
func (s *Store) Path() string {
	return s.path
}

// Track inserts or refreshes a journal row for filename in the given state.
// Existing rows keep their creation time; state and path are replaced.
func (s *Store) Track(ctx context.Context, station, filename, path string, status Status) (*Record, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO segments (station, filename, path, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(filename) DO UPDATE SET
             path = excluded.path,
             status = excluded.status,
             updated_at = excluded.updated_at`,
		station,
		filename,
		nullableString(path),
		status,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("track segment: %w", err)
	}
	return s.GetByFilename(ctx, filename)
}

// Transition moves a tracked segment to a new state, updating its current
// path and optional digest or error detail.
func (s *Store) Transition(ctx context.Context, filename string, status Status, path, digest, errorMessage string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE segments
         SET status = ?, path = ?, content_digest = ?, error_message = ?, updated_at = ?
         WHERE filename = ?`,
		status,
		nullableString(path),
		nullableString(digest),
		nullableString(errorMessage),
		now,
		filename,
	)
	if err != nil {
		return fmt.Errorf("transition segment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows affected: %w", err)
	}
	if affected == 0 {
		// Placement can observe files capture never journaled, e.g. after
		// a daemon restart. Record them fresh.
		_, err := s.db.ExecContext(
			ctx,
			`INSERT INTO segments (station, filename, path, status, content_digest, error_message, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			"",
			filename,
			nullableString(path),
			status,
			nullableString(digest),
			nullableString(errorMessage),
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert transitioned segment: %w", err)
		}
	}
	return nil
}

// GetByFilename fetches a journal row, or nil when absent.
func (s *Store) GetByFilename(ctx context.Context, filename string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM segments WHERE filename = ?`, filename)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	return record, nil
}

// List returns journal rows, newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM segments`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		query += ` WHERE status IN (?` + strings.Repeat(",?", len(statuses)-1) + `)`
		for _, status := range statuses {
			args = append(args, status)
		}
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Health returns aggregate journal counts.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM segments GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("journal health: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan health row: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusRecording:
			summary.Recording = count
		case StatusClosed:
			summary.Closed = count
		case StatusPlaced:
			summary.Placed = count
		case StatusDuplicate:
			summary.Duplicate = count
		case StatusUnmatched:
			summary.Unmatched = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	return summary, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var path, digest, errorMessage sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(
		&record.ID,
		&record.Station,
		&record.Filename,
		&path,
		&record.Status,
		&digest,
		&errorMessage,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	record.Path = path.String
	record.ContentDigest = digest.String
	record.ErrorMessage = errorMessage.String
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		record.UpdatedAt = parsed
	}
	return &record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
