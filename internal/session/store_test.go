package session

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "user:a", []byte("x"), time.Minute))
	got, err := s.Get(ctx, "user:a")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "user:a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "user:b", []byte("y"), 0))
	require.NoError(t, s.Delete(ctx, "user:b"))
	_, err = s.Get(ctx, "user:b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	ctx := context.Background()
	s := NewRedisStore(rdb, "")

	_, err := s.Get(ctx, "user:none")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "user:1", []byte(`{"id":"1"}`), time.Minute))
	assert.True(t, mr.Exists("malo:session:user:1"))
	got, err := s.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(got))

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "user:1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "user:2", []byte("v"), time.Minute))
	require.NoError(t, s.Delete(ctx, "user:2"))
	assert.False(t, mr.Exists("malo:session:user:2"))
}

func TestSQLStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	s := NewSQLStore(db)
	s.now = func() time.Time { return now }
	ctx := context.Background()
	hash := hashKey("user:abc")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO web_sessions")).
		WithArgs(hash, []byte("blob"), now.Add(time.Hour)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Set(ctx, "user:abc", []byte("blob"), time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT data, expires_at FROM web_sessions")).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"data", "expires_at"}).AddRow([]byte("blob"), now.Add(time.Hour)))
	got, err := s.Get(ctx, "user:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), got)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT data, expires_at FROM web_sessions")).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"data", "expires_at"}).AddRow([]byte("blob"), now.Add(-time.Second)))
	_, err = s.Get(ctx, "user:abc")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT data, expires_at FROM web_sessions")).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"data", "expires_at"}))
	_, err = s.Get(ctx, "user:abc")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM web_sessions WHERE key_hash=?")).
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Delete(ctx, "user:abc"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM web_sessions WHERE expires_at < ?")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHashKeyHidesRawKey(t *testing.T) {
	h := hashKey("user:abc")
	assert.Len(t, h, 64)
	assert.NotContains(t, h, "abc")
}
