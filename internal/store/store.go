// Package store is the Answer Store: a SQLite database holding finalized
// survey results.
//
// Three tables mirror the reporting needs: students (one row per finished
// respondent), static_responses (fixed-form answers, later annotated with a
// cluster label) and dynamic_responses (free-text comments with their
// enrichment summary). Writes are independent statements, not a transaction,
// so a failed finalize can leave a partial result behind.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps the survey results database.
type Store struct {
	db *sql.DB
}

// StaticResponse is one fixed-form answer row.
type StaticResponse struct {
	StudentID int64
	Question  string
	Answer    string
	Cluster   *int64
}

// DynamicResponse is one enriched free-text answer row.
type DynamicResponse struct {
	StudentID        int64
	Question         string
	Comment          string
	ProcessedComment string
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name  TEXT NOT NULL,
			department TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS static_responses (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id INTEGER NOT NULL REFERENCES students(id),
			question   TEXT NOT NULL,
			answer     TEXT NOT NULL,
			cluster    INTEGER
		);

		CREATE TABLE IF NOT EXISTS dynamic_responses (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id        INTEGER NOT NULL REFERENCES students(id),
			question          TEXT NOT NULL,
			comment           TEXT NOT NULL,
			processed_comment TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// InsertStudent creates the respondent record and returns its id.
func (s *Store) InsertStudent(ctx context.Context, fullName, department string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO students (full_name, department) VALUES (?, ?)",
		fullName, department,
	)
	if err != nil {
		return 0, fmt.Errorf("store: insert student: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: student id: %w", err)
	}
	return id, nil
}

// InsertStaticResponse writes one fixed-form answer row.
func (s *Store) InsertStaticResponse(ctx context.Context, studentID int64, question, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO static_responses (student_id, question, answer) VALUES (?, ?, ?)",
		studentID, question, answer,
	)
	if err != nil {
		return fmt.Errorf("store: insert static response: %w", err)
	}
	return nil
}

// InsertDynamicResponse writes one free-text answer row with its summary.
func (s *Store) InsertDynamicResponse(ctx context.Context, studentID int64, question, comment, processed string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO dynamic_responses (student_id, question, comment, processed_comment) VALUES (?, ?, ?, ?)",
		studentID, question, comment, processed,
	)
	if err != nil {
		return fmt.Errorf("store: insert dynamic response: %w", err)
	}
	return nil
}

// StaticResponses returns all fixed-form rows.
func (s *Store) StaticResponses(ctx context.Context) ([]StaticResponse, error) {
	return s.queryStatic(ctx,
		"SELECT student_id, question, answer, cluster FROM static_responses ORDER BY id")
}

// StaticResponsesForQuestions returns fixed-form rows whose question is in
// prompts. Used by the clustering job to pick rating answers.
func (s *Store) StaticResponsesForQuestions(ctx context.Context, prompts []string) ([]StaticResponse, error) {
	if len(prompts) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(prompts))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(prompts))
	for i, p := range prompts {
		args[i] = p
	}
	return s.queryStatic(ctx,
		"SELECT student_id, question, answer, cluster FROM static_responses WHERE question IN ("+placeholders+") ORDER BY id",
		args...)
}

// ClusteredResponses returns fixed-form rows that carry a cluster label.
func (s *Store) ClusteredResponses(ctx context.Context) ([]StaticResponse, error) {
	return s.queryStatic(ctx,
		"SELECT student_id, question, answer, cluster FROM static_responses WHERE cluster IS NOT NULL ORDER BY id")
}

func (s *Store) queryStatic(ctx context.Context, query string, args ...any) ([]StaticResponse, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query static responses: %w", err)
	}
	defer rows.Close()

	var out []StaticResponse
	for rows.Next() {
		var r StaticResponse
		var cluster sql.NullInt64
		if err := rows.Scan(&r.StudentID, &r.Question, &r.Answer, &cluster); err != nil {
			return nil, fmt.Errorf("store: scan static response: %w", err)
		}
		if cluster.Valid {
			v := cluster.Int64
			r.Cluster = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate static responses: %w", err)
	}
	return out, nil
}

// SetCluster attaches a cluster label to every row matching (question, answer).
// Identical answers to the same question share one label.
func (s *Store) SetCluster(ctx context.Context, cluster int, question, answer string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE static_responses SET cluster = ? WHERE question = ? AND answer = ?",
		cluster, question, answer,
	)
	if err != nil {
		return fmt.Errorf("store: set cluster: %w", err)
	}
	return nil
}

// DynamicResponses returns all free-text rows with their summaries.
func (s *Store) DynamicResponses(ctx context.Context) ([]DynamicResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT student_id, question, comment, processed_comment FROM dynamic_responses ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("store: query dynamic responses: %w", err)
	}
	defer rows.Close()

	var out []DynamicResponse
	for rows.Next() {
		var r DynamicResponse
		if err := rows.Scan(&r.StudentID, &r.Question, &r.Comment, &r.ProcessedComment); err != nil {
			return nil, fmt.Errorf("store: scan dynamic response: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate dynamic responses: %w", err)
	}
	return out, nil
}

// CountStudents returns the number of respondent records.
func (s *Store) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM students").Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count students: %w", err)
	}
	return n, nil
}
