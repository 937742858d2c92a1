// Package storage provides a SQLite-backed cache of fetched match lists.
//
// Entries are keyed by (team, event) and expire after a configurable age so that an
// event still in progress is re-fetched. Only raw match data is stored; distributions
// are always rebuilt from a fresh simulation.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rewired-gh/quantumscout/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS match_cache (
	id         TEXT PRIMARY KEY,
	team_key   TEXT NOT NULL,
	event_key  TEXT NOT NULL,
	payload    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL,
	UNIQUE (team_key, event_key)
);
CREATE INDEX IF NOT EXISTS idx_match_cache_fetched_at ON match_cache (fetched_at);
`

// Storage caches match lists in SQLite
type Storage struct {
	db *sql.DB
	mu sync.Mutex

	// Configuration
	maxAge     time.Duration
	maxEntries int
	now        func() time.Time
}

// New opens (creating if needed) the cache database at dbPath.
// Use ":memory:" for a throwaway cache. maxAge <= 0 disables expiry and
// maxEntries <= 0 disables rotation.
func New(dbPath string, maxAge time.Duration, maxEntries int) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "quantum-scout", "matches.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Storage{
		db:         db,
		maxAge:     maxAge,
		maxEntries: maxEntries,
		now:        time.Now,
	}, nil
}

// Close releases the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// PutMatches stores the match list for a team at an event, replacing any earlier entry
func (s *Storage) PutMatches(teamKey, eventKey string, matches []models.Match) error {
	if teamKey == "" || eventKey == "" {
		return fmt.Errorf("team key and event key must not be empty")
	}
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`
		INSERT INTO match_cache (id, team_key, event_key, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (team_key, event_key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		uuid.New().String(), teamKey, eventKey, string(payload), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store matches: %w", err)
	}
	return nil
}

// GetMatches returns the cached match list, or ok=false when absent or expired
func (s *Storage) GetMatches(teamKey, eventKey string) ([]models.Match, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	var fetchedAt int64
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM match_cache WHERE team_key = ? AND event_key = ?`,
		teamKey, eventKey,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read matches: %w", err)
	}

	if s.maxAge > 0 && s.now().Sub(time.Unix(0, fetchedAt)) > s.maxAge {
		return nil, false, nil
	}

	var matches []models.Match
	if err := json.Unmarshal([]byte(payload), &matches); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal matches: %w", err)
	}
	return matches, true, nil
}

// Count returns the number of cached entries
func (s *Storage) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM match_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// Rotate removes expired entries, then the oldest entries beyond the max limit
func (s *Storage) Rotate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge).UnixNano()
		if _, err := s.db.Exec(`DELETE FROM match_cache WHERE fetched_at < ?`, cutoff); err != nil {
			return fmt.Errorf("failed to remove expired entries: %w", err)
		}
	}

	if s.maxEntries > 0 {
		_, err := s.db.Exec(`
			DELETE FROM match_cache WHERE id NOT IN (
				SELECT id FROM match_cache ORDER BY fetched_at DESC LIMIT ?
			)`, s.maxEntries)
		if err != nil {
			return fmt.Errorf("failed to rotate entries: %w", err)
		}
	}
	return nil
}
