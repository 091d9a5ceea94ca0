package session

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

// SQLStore persists session blobs in the MySQL `web_sessions` table.  Only
// a SHA-256 hash of the key is stored so that a leaked table cannot be used
// to hijack a browser session.
type SQLStore struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{DB: db, now: time.Now} }

const createSessionsTable = `CREATE TABLE IF NOT EXISTS web_sessions (
  key_hash CHAR(64) NOT NULL PRIMARY KEY,
  data BLOB NOT NULL,
  expires_at DATETIME NOT NULL,
  INDEX idx_web_sessions_expires (expires_at)
)`

// EnsureSchema creates the sessions table when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, createSessionsTable)
	return err
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Get returns the blob if a non-expired row exists.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		data      []byte
		expiresAt time.Time
	)
	err := s.DB.QueryRowContext(ctx,
		"SELECT data, expires_at FROM web_sessions WHERE key_hash=? LIMIT 1",
		hashKey(key)).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.now().UTC().After(expiresAt) {
		return nil, ErrNotFound
	}
	return data, nil
}

// Set upserts the row.  A non-positive ttl keeps the row for a day.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := s.DB.ExecContext(ctx,
		"INSERT INTO web_sessions (key_hash, data, expires_at) VALUES (?,?,?) ON DUPLICATE KEY UPDATE data=VALUES(data), expires_at=VALUES(expires_at)",
		hashKey(key), value, s.now().UTC().Add(ttl))
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, "DELETE FROM web_sessions WHERE key_hash=?", hashKey(key))
	return err
}

// PurgeExpired removes expired rows and reports how many were deleted.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM web_sessions WHERE expires_at < ?", s.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
