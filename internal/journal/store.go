package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one organize invocation.
type Run struct {
	ID          string
	Source      string
	Destination string
	Convert     bool
	Quality     int
	StartedAt   time.Time
	FinishedAt  time.Time
	Scanned     int
	Matched     int
	Moved       int
	Undated     int
	Failed      int
	Converted   int
	Bytes       int64
	Canceled    bool
}

// Move is one relocated file.
type Move struct {
	RunID       string
	Source      string
	Destination string
	CaptureDate time.Time
	Converted   string
	Bytes       int64
	MovedAt     time.Time
}

// ErrRunNotFound is returned when a run id has no journal row.
var ErrRunNotFound = errors.New("run not found")

// Store manages the journal database.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// timeLayout is fixed width so text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
	dateLayout = "2006-01-02"
)

// Open creates or connects to the journal database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts the run row.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return s.exec(ctx, `INSERT INTO runs (id, source_dir, dest_dir, convert_jpeg, quality, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Destination, boolInt(run.Convert), run.Quality, formatTime(run.StartedAt),
	)
}

// RecordMove appends a moved file to its run.
func (s *Store) RecordMove(ctx context.Context, move Move) error {
	return s.exec(ctx, `INSERT INTO moves (run_id, source_path, dest_path, capture_date, converted_path, bytes, moved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		move.RunID, move.Source, move.Destination, move.CaptureDate.Format(dateLayout),
		nullString(move.Converted), move.Bytes, formatTime(move.MovedAt),
	)
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	return s.exec(ctx, `UPDATE runs SET finished_at = ?, scanned = ?, matched = ?, moved = ?, undated = ?,
		failed = ?, converted = ?, bytes = ?, canceled = ? WHERE id = ?`,
		formatTime(run.FinishedAt), run.Scanned, run.Matched, run.Moved, run.Undated,
		run.Failed, run.Converted, run.Bytes, boolInt(run.Canceled), run.ID,
	)
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_dir, dest_dir, convert_jpeg, quality, started_at, finished_at,
		scanned, matched, moved, undated, failed, converted, bytes, canceled
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a single run by id or unique id prefix.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT id, source_dir, dest_dir, convert_jpeg, quality, started_at, finished_at,
		scanned, matched, moved, undated, failed, converted, bytes, canceled
		FROM runs WHERE id = ? OR id LIKE ? LIMIT 2`, id, stripLikeWildcards(id)+"%")
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return Run{}, err
		}
		if run.ID == id {
			return run, nil
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(matches) {
	case 0:
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return Run{}, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
}

// ListMoves returns the files moved by a run in the order they were moved.
func (s *Store) ListMoves(ctx context.Context, runID string) ([]Move, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT run_id, source_path, dest_path, capture_date,
		converted_path, bytes, moved_at FROM moves WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var (
			move               Move
			captureDate, moved string
			converted          sql.NullString
		)
		if err := rows.Scan(&move.RunID, &move.Source, &move.Destination, &captureDate, &converted, &move.Bytes, &moved); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		move.CaptureDate, _ = time.Parse(dateLayout, captureDate)
		move.MovedAt = parseTime(moved)
		move.Converted = converted.String
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		convert, canceled int
		started           string
		finished          sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Source, &run.Destination, &convert, &run.Quality, &started, &finished,
		&run.Scanned, &run.Matched, &run.Moved, &run.Undated, &run.Failed, &run.Converted, &run.Bytes, &canceled); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Convert = convert != 0
	run.Canceled = canceled != 0
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := range busyRetryAttempts {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func stripLikeWildcards(value string) string {
	replacer := strings.NewReplacer(`%`, ``, `_`, ``)
	return replacer.Replace(value)
}
