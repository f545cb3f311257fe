// Package cache is a small TTL key-value store backed by the app database.
// Catalog feeds live here so repeated requests do not hammer the upstream
// books API; entries expire lazily on read.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Default lifetimes for catalog material.
const (
	FeedTTL = 24 * time.Hour
	PoolTTL = 7 * 24 * time.Hour
)

type Store struct {
	DB *sql.DB

	// now is swappable so tests can move the clock.
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: time.Now}
}

// Get returns the cached value for key if it is younger than ttl. An expired
// entry is deleted and reported as a miss.
func (s *Store) Get(ctx context.Context, key string, ttl time.Duration) ([]byte, bool, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT value, stored_at FROM cache_entries WHERE key = ?
	`, key)

	var value []byte
	var storedAt int64
	if err := row.Scan(&value, &storedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	age := s.now().Sub(time.Unix(storedAt, 0))
	if age > ttl {
		if _, err := s.DB.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
			return nil, false, fmt.Errorf("cache expire %s: %w", key, err)
		}
		return nil, false, nil
	}

	return value, true, nil
}

// Set stores value under key, stamping it with the current time. An existing
// entry is replaced and its clock restarts.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, stored_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at
	`, key, value, s.now().Unix())
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes an entry. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// Keys lists cached keys with the given prefix, newest first.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT key FROM cache_entries
		WHERE key LIKE ? || '%'
		ORDER BY stored_at DESC
	`, prefix)
	if err != nil {
		return nil, fmt.Errorf("cache keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan cache key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
