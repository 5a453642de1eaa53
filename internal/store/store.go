// Package store keeps the essay corpus and its split assignments in a
// SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/essay-br/syllables/corpus"
	"github.com/essay-br/syllables/essay"
)

// ErrNoRuns is returned by LatestRun on a store without split runs.
var ErrNoRuns = errors.New("no split runs recorded")

type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SplitRun describes one recorded split.
type SplitRun struct {
	ID        string
	Seed      uint64
	Fractions corpus.Fractions
	CreatedAt time.Time
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	var clean []string
	for _, line := range strings.Split(GetSchema(), "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "--") && trimmed != "" {
			clean = append(clean, line)
		}
	}

	if _, err := s.db.Exec(strings.Join(clean, "\n")); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertEssays inserts or refreshes essays in a single transaction.
func (s *Store) UpsertEssays(essays []essay.Essay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := upsertEssays(tx, essays); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertEssays(tx *sql.Tx, essays []essay.Essay) error {
	stmt, err := tx.Prepare(`
		INSERT INTO essays (id, source, score, title, body, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			score = excluded.score,
			title = excluded.title,
			body = excluded.body,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range essays {
		if _, err := stmt.Exec(e.ID, e.Source, e.Score, e.Title, e.Body()); err != nil {
			return fmt.Errorf("upsert essay %s: %w", e.ID, err)
		}
	}
	return nil
}

// Essays returns every stored essay ordered by source.
func (s *Store) Essays() ([]essay.Essay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEssays(`SELECT id, source, score, title, body FROM essays ORDER BY source, id`)
}

// CountEssays returns the number of stored essays.
func (s *Store) CountEssays() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM essays`).Scan(&n)
	return n, err
}

func (s *Store) queryEssays(query string, args ...any) ([]essay.Essay, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query essays: %w", err)
	}
	defer rows.Close()

	var out []essay.Essay
	for rows.Next() {
		var e essay.Essay
		var body string
		if err := rows.Scan(&e.ID, &e.Source, &e.Score, &e.Title, &body); err != nil {
			return nil, fmt.Errorf("scan essay: %w", err)
		}
		if body != "" {
			e.Paragraphs = strings.Split(body, "\n")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RecordSplit stores the essays of every split, the run and the membership
// of each essay in one transaction, and returns the new run's ID.
func (s *Store) RecordSplit(splits *corpus.Splits, seed uint64, f corpus.Fractions) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	for _, name := range corpus.Names {
		essays, _ := splits.Get(name)
		if err := upsertEssays(tx, essays); err != nil {
			return "", err
		}
	}

	runID := uuid.NewString()
	if _, err := tx.Exec(`
		INSERT INTO split_runs (id, seed, frac_train, frac_dev, frac_test, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, int64(seed), f.Train, f.Dev, f.Test, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert split run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO split_members (run_id, essay_id, split, position) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, name := range corpus.Names {
		essays, _ := splits.Get(name)
		for i, e := range essays {
			if _, err := stmt.Exec(runID, e.ID, name, i); err != nil {
				return "", fmt.Errorf("insert split member %s: %w", e.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}

// LatestRun returns the most recently recorded split run.
func (s *Store) LatestRun() (*SplitRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run  SplitRun
		seed int64
	)
	err := s.db.QueryRow(`
		SELECT id, seed, frac_train, frac_dev, frac_test, created_at
		FROM split_runs ORDER BY created_at DESC, rowid DESC LIMIT 1
	`).Scan(&run.ID, &seed, &run.Fractions.Train, &run.Fractions.Dev, &run.Fractions.Test, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("latest split run: %w", err)
	}
	run.Seed = uint64(seed)
	return &run, nil
}

// SplitMembers returns the essays assigned to split name in run runID, in
// the order the splitter produced them.
func (s *Store) SplitMembers(runID, name string) ([]essay.Essay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEssays(`
		SELECT e.id, e.source, e.score, e.title, e.body
		FROM split_members m JOIN essays e ON e.id = m.essay_id
		WHERE m.run_id = ? AND m.split = ?
		ORDER BY m.position
	`, runID, name)
}

// LoadSplits rebuilds the splits of run runID.
func (s *Store) LoadSplits(runID string) (*corpus.Splits, error) {
	out := &corpus.Splits{}
	for _, name := range corpus.Names {
		essays, err := s.SplitMembers(runID, name)
		if err != nil {
			return nil, err
		}
		switch name {
		case corpus.Train:
			out.Train = essays
		case corpus.Dev:
			out.Dev = essays
		case corpus.Test:
			out.Test = essays
		}
	}
	return out, nil
}
