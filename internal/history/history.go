// Package history keeps a local SQLite journal of finished requests: what
// was asked, the final command and how it ended.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashwch/smartff/internal/appdirs"
	"github.com/ashwch/smartff/internal/safety"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeError     Outcome = "error"
)

type Entry struct {
	ID          string
	CreatedAt   time.Time
	Request     string
	Command     string
	Explanation string
	Model       string
	Refinements int
	Outcome     Outcome
	ExitCode    int
}

type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history db path is empty")
	}
	if err := appdirs.EnsurePrivateDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func OpenDefault() (*Store, error) {
	path, err := appdirs.HistoryDBPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS requests (
		id          TEXT PRIMARY KEY,
		created_at  TEXT NOT NULL,
		request     TEXT NOT NULL,
		command     TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT '',
		model       TEXT NOT NULL DEFAULT '',
		refinements INTEGER NOT NULL DEFAULT 0,
		outcome     TEXT NOT NULL,
		exit_code   INTEGER NOT NULL DEFAULT -1
	);
	CREATE INDEX IF NOT EXISTS idx_requests_created_at ON requests(created_at);
	`)
	return err
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e with secrets redacted, assigning an ID and timestamp when
// missing. The stored entry is returned.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.Request = safety.RedactText(strings.TrimSpace(e.Request))
	e.Command = safety.RedactText(strings.TrimSpace(e.Command))
	e.Explanation = safety.RedactText(strings.TrimSpace(e.Explanation))
	if e.Outcome == "" {
		e.Outcome = OutcomeError
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (id, created_at, request, command, explanation, model, refinements, outcome, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.Format(time.RFC3339Nano), e.Request, e.Command, e.Explanation,
		e.Model, e.Refinements, string(e.Outcome), e.ExitCode,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record history entry: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, "", limit)
}

// Search returns up to limit entries whose request or command contains
// term, newest first.
func (s *Store) Search(ctx context.Context, term string, limit int) ([]Entry, error) {
	return s.query(ctx, strings.TrimSpace(term), limit)
}

func (s *Store) query(ctx context.Context, term string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT id, created_at, request, command, explanation, model, refinements, outcome, exit_code FROM requests`
	args := []any{}
	if term != "" {
		q += ` WHERE request LIKE ? ESCAPE '\' OR command LIKE ? ESCAPE '\'`
		pattern := "%" + escapeLike(term) + "%"
		args = append(args, pattern, pattern)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			outcome string
		)
		if err := rows.Scan(&e.ID, &created, &e.Request, &e.Command, &e.Explanation, &e.Model, &e.Refinements, &outcome, &e.ExitCode); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		e.Outcome = Outcome(outcome)
		out = append(out, e)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
