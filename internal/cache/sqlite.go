package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteTier is the persisted cache tier, a single key/value table in an
// embedded SQLite database. Each row carries its write time and both TTLs;
// the memory TTL rides along so a disk hit can be promoted back into the
// memory tier with its original lifetime.
type SQLiteTier struct {
	db  *sql.DB
	now func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key         TEXT PRIMARY KEY,
	payload     BLOB NOT NULL,
	written_at  INTEGER NOT NULL,
	disk_ttl_ms INTEGER NOT NULL,
	mem_ttl_ms  INTEGER NOT NULL
);
`

// NewSQLiteTier opens or creates the cache database at path.
func NewSQLiteTier(path string) (*SQLiteTier, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &SQLiteTier{db: db, now: time.Now}, nil
}

// Get returns the payload and memory TTL for key, or false if the row is
// absent or past its disk TTL. Expired rows are deleted on the way out.
func (s *SQLiteTier) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	var payload []byte
	var writtenAt, diskTTLMs, memTTLMs int64

	row := s.db.QueryRowContext(ctx,
		`SELECT payload, written_at, disk_ttl_ms, mem_ttl_ms FROM cache_entries WHERE key = ?`, key)
	if err := row.Scan(&payload, &writtenAt, &diskTTLMs, &memTTLMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}

	expiresAt := time.UnixMilli(writtenAt).Add(time.Duration(diskTTLMs) * time.Millisecond)
	if s.now().After(expiresAt) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return nil, 0, false, nil
	}

	return payload, time.Duration(memTTLMs) * time.Millisecond, true, nil
}

// Set upserts the payload for key with the given TTLs.
func (s *SQLiteTier) Set(ctx context.Context, key string, payload []byte, memTTL, diskTTL time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, payload, written_at, disk_ttl_ms, mem_ttl_ms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   payload = excluded.payload,
		   written_at = excluded.written_at,
		   disk_ttl_ms = excluded.disk_ttl_ms,
		   mem_ttl_ms = excluded.mem_ttl_ms`,
		key, payload, s.now().UnixMilli(), diskTTL.Milliseconds(), memTTL.Milliseconds())
	return err
}

// DeletePrefix removes every row whose key starts with prefix. Keys contain
// underscores, which are LIKE wildcards, so the comparison uses substr.
func (s *SQLiteTier) DeletePrefix(ctx context.Context, prefix string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE substr(key, 1, length(?)) = ?`, prefix, prefix)
	return err
}

// Clear empties the tier.
func (s *SQLiteTier) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}

// Count returns the number of rows currently stored, expired or not.
func (s *SQLiteTier) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (s *SQLiteTier) Close() error {
	return s.db.Close()
}
