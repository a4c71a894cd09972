package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
	_ "modernc.org/sqlite"
)

const createSessions = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP NOT NULL,
	role TEXT NOT NULL,
	field TEXT NOT NULL,
	field_bits INTEGER NOT NULL,
	repetition INTEGER NOT NULL,
	expected INTEGER NOT NULL,
	symbols INTEGER NOT NULL,
	start_ns INTEGER NOT NULL,
	end_ns INTEGER NOT NULL,
	processing_ns INTEGER NOT NULL,
	failures INTEGER NOT NULL,
	first_failure INTEGER NOT NULL,
	interrupted INTEGER NOT NULL,
	duration_ms REAL NOT NULL,
	bandwidth REAL NOT NULL,
	percent_correct REAL NOT NULL
);`

const insertSession = `
INSERT INTO sessions (role, field, field_bits, repetition, expected, symbols, start_ns, end_ns,
	processing_ns, failures, first_failure, interrupted, duration_ms, bandwidth, percent_correct)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SQLiteRecorder keeps every session in a sessions table, derived metrics included
type SQLiteRecorder struct {
	db   *sql.DB
	stmt *sql.Stmt
	mu   sync.Mutex
}

func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode=wal&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("recorder: open sqlite db %s: %w", path, err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: ping sqlite db %s: %w", path, err)
	}
	if _, err = db.Exec(createSessions); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: create sessions table: %w", err)
	}
	stmt, err := db.Prepare(insertSession)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: prepare insert: %w", err)
	}
	return &SQLiteRecorder{db: db, stmt: stmt}, nil
}

func (r *SQLiteRecorder) Record(s stats.SessionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.stmt.Exec(string(s.Role), s.Field, s.FieldBits, s.Repetition, s.Expected, s.Symbols,
		s.Start.UnixNano(), s.End.UnixNano(), int64(s.Processing), s.Failures, s.FirstFailure,
		s.Interrupted, s.DurationMs(), s.Bandwidth(), s.PercentCorrect())
	if err != nil {
		return fmt.Errorf("recorder: insert session: %w", err)
	}
	return nil
}

// Sessions returns the stored sessions of a role, oldest first
func (r *SQLiteRecorder) Sessions(role stats.Role) ([]stats.SessionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows, err := r.db.Query(`SELECT role, field, field_bits, repetition, expected, symbols, start_ns,
		end_ns, processing_ns, failures, first_failure, interrupted FROM sessions WHERE role = ? ORDER BY id`, string(role))
	if err != nil {
		return nil, fmt.Errorf("recorder: query sessions: %w", err)
	}
	defer rows.Close()

	var out []stats.SessionStats
	for rows.Next() {
		var (
			s                      stats.SessionStats
			roleName               string
			start, end, processing int64
		)
		if err := rows.Scan(&roleName, &s.Field, &s.FieldBits, &s.Repetition, &s.Expected, &s.Symbols,
			&start, &end, &processing, &s.Failures, &s.FirstFailure, &s.Interrupted); err != nil {
			return nil, fmt.Errorf("recorder: scan session: %w", err)
		}
		s.Role = stats.Role(roleName)
		s.Start = time.Unix(0, start)
		s.End = time.Unix(0, end)
		s.Processing = time.Duration(processing)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	if r.stmt != nil {
		firstErr = r.stmt.Close()
		r.stmt = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.db = nil
	}
	return firstErr
}
