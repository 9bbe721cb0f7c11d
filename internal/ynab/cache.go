package ynab

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// cacheNamespace scopes the uuid5 cache keys.
var cacheNamespace = uuid.MustParse("2a49a9ba-15cf-40d2-ab95-87961687a04f")

// Cache is a SQLite-backed store for API responses, so repeat runs against
// the same budget do not re-fetch unchanged listings.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the response cache at path.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS responses (
			key        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Key derives a stable cache key from the request parts and the token, so
// switching accounts never serves another account's data.
func Key(parts ...string) string {
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += "-"
		}
		joined += p
	}
	return uuid.NewSHA1(cacheNamespace, []byte(joined)).String()
}

// Get returns the cached body for key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	var body []byte
	err := c.db.QueryRow(`SELECT body FROM responses WHERE key = ?`, key).Scan(&body)
	if err != nil {
		return nil, false
	}
	return body, true
}

// Put stores a response body under key, replacing any previous entry.
func (c *Cache) Put(key string, body []byte) error {
	if c == nil {
		return nil
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (key, body, created_at) VALUES (?, ?, ?)`,
		key, body, time.Now().UTC(),
	)
	return err
}
