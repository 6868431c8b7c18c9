// Package sqlitecache is a content-addressed extraction cache backed by a
// local SQLite file. Identical (chunk text, config version) pairs skip the
// model call entirely.
package sqlitecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sundaymedia/catholiccuts/internal/domain/moments"
)

type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache database at baseDir/extraction.db.
func Open(baseDir string) (*Cache, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dbPath := filepath.Join(baseDir, "extraction.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS extraction_cache (
	key        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Get returns the cached records for key. A missing key is a miss, not an
// error.
func (c *Cache) Get(ctx context.Context, key string) ([]moments.Record, bool, error) {
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM extraction_cache WHERE key = ?`, key,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var recs []moments.Record
	if err := json.Unmarshal([]byte(payload), &recs); err != nil {
		// A corrupt row behaves like a miss; the next Put overwrites it.
		return nil, false, nil
	}
	return recs, true, nil
}

// Put stores records for key. Writes are idempotent: racing writers for the
// same key both succeed and either payload is acceptable.
func (c *Cache) Put(ctx context.Context, key string, recs []moments.Record) error {
	payload, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO extraction_cache (key, payload, created_at) VALUES (?, ?, ?)`,
		key, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Clear drops every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM extraction_cache`); err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}
