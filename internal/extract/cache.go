// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"
)

// Cache pins oracle results per input text in a SQLite database. Wrapping a
// non-deterministic oracle (e.g. a model-backed analyzer) in a Cache makes
// repeated runs see identical findings, which the downstream dedup and rank
// stages require.
type Cache struct {
	db    *sql.DB
	inner Oracle
}

var _ Oracle = (*Cache)(nil)

// NewCache opens or creates the cache database at path and wraps inner.
func NewCache(path string, inner Oracle) (*Cache, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening oracle cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS findings (
		text_hash TEXT PRIMARY KEY,
		findings TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db, inner: inner}, nil
}

// Close releases the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Extract returns the pinned findings for text if present, otherwise
// delegates to the wrapped oracle and pins the result.
func (c *Cache) Extract(ctx context.Context, text string) ([]Finding, error) {
	key := textKey(text)

	var stored string
	err := c.db.QueryRowContext(ctx,
		`SELECT findings FROM findings WHERE text_hash = ?`, key,
	).Scan(&stored)
	switch {
	case err == nil:
		var findings []Finding
		if err := yaml.Unmarshal([]byte(stored), &findings); err != nil {
			return nil, fmt.Errorf("parsing cached findings: %w", err)
		}
		return findings, nil
	case err != sql.ErrNoRows:
		return nil, fmt.Errorf("querying oracle cache: %w", err)
	}

	findings, err := c.inner.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := yaml.Marshal(findings)
	if err != nil {
		return nil, fmt.Errorf("encoding findings: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO findings (text_hash, findings) VALUES (?, ?)`,
		key, string(data),
	)
	if err != nil {
		return nil, fmt.Errorf("pinning findings: %w", err)
	}
	return findings, nil
}

func textKey(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}
