// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps an in-process record of completed triage runs.
// The index is a memory-mode SQLite database: it lives exactly as long
// as the process and is never written to disk, so runs can be listed
// and exported within a session without persisting anything.
package archive

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"
)

// Store manages the in-memory run index.
type Store struct {
	db *sql.DB
}

// RunPaper is one scored paper within an archived run.
type RunPaper struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Score int    `json:"score" yaml:"score"`
	Rank  int    `json:"rank" yaml:"rank"`
}

// RunRecord is the archived summary of one pipeline run.
type RunRecord struct {
	SessionID     string        `json:"session_id" yaml:"session_id"`
	Query         string        `json:"query" yaml:"query"`
	Status        string        `json:"status" yaml:"status"`
	DocumentCount int           `json:"document_count" yaml:"document_count"`
	Elapsed       time.Duration `json:"elapsed" yaml:"elapsed"`
	CreatedAt     time.Time     `json:"created_at" yaml:"created_at"`
	Papers        []RunPaper    `json:"papers" yaml:"papers"`
}

// NewStore opens a fresh memory-mode database and creates the schema.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}
	// A memory-mode database exists per connection; hold exactly one.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return s, nil
}

// Close releases the database and discards all archived runs.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	const schema = `
CREATE TABLE runs (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id     TEXT NOT NULL,
	query          TEXT NOT NULL,
	status         TEXT NOT NULL,
	document_count INTEGER NOT NULL,
	elapsed_ms     INTEGER NOT NULL,
	created_at     TIMESTAMP NOT NULL
);
CREATE TABLE run_papers (
	run_id   INTEGER NOT NULL REFERENCES runs(id),
	paper_id TEXT NOT NULL,
	title    TEXT NOT NULL,
	score    INTEGER NOT NULL,
	rank     INTEGER NOT NULL
);
CREATE INDEX idx_runs_session ON runs(session_id);
`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one run summary.
func (s *Store) Record(run RunRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO runs (session_id, query, status, document_count, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.SessionID, run.Query, run.Status, run.DocumentCount,
		run.Elapsed.Milliseconds(), run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run id: %w", err)
	}

	for _, p := range run.Papers {
		if _, err := tx.Exec(
			`INSERT INTO run_papers (run_id, paper_id, title, score, rank) VALUES (?, ?, ?, ?, ?)`,
			runID, p.ID, p.Title, p.Score, p.Rank,
		); err != nil {
			return fmt.Errorf("inserting run paper %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// List returns archived runs, newest first. A non-empty sessionID
// filters to that session; limit <= 0 means no limit.
func (s *Store) List(sessionID string, limit int) ([]RunRecord, error) {
	query := `SELECT id, session_id, query, status, document_count, elapsed_ms, created_at
	          FROM runs`
	var args []any
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	var ids []int64
	for rows.Next() {
		var id int64
		var r RunRecord
		var elapsedMS int64
		if err := rows.Scan(&id, &r.SessionID, &r.Query, &r.Status, &r.DocumentCount, &elapsedMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, r)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i, id := range ids {
		papers, err := s.listPapers(id)
		if err != nil {
			return nil, err
		}
		runs[i].Papers = papers
	}
	return runs, nil
}

func (s *Store) listPapers(runID int64) ([]RunPaper, error) {
	rows, err := s.db.Query(
		`SELECT paper_id, title, score, rank FROM run_papers WHERE run_id = ? ORDER BY rank`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run papers: %w", err)
	}
	defer rows.Close()

	var papers []RunPaper
	for rows.Next() {
		var p RunPaper
		if err := rows.Scan(&p.ID, &p.Title, &p.Score, &p.Rank); err != nil {
			return nil, fmt.Errorf("scanning run paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// ExportYAML writes all archived runs to w as YAML, newest first.
func (s *Store) ExportYAML(w io.Writer) error {
	runs, err := s.List("", 0)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling archive: %w", err)
	}
	_, err = w.Write(data)
	return err
}
