package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)

	data, err := s.Load(context.Background(), "users")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "orders", []byte(`[{"id":"ORD001"}]`)))
	require.NoError(t, s.Save(ctx, "orders", []byte(`[]`)))

	data, err := s.Load(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "orders.json", entries[0].Name())
	assert.NoError(t, s.Close())
}

func TestRedisStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := newRedisStore(db)
	ctx := context.Background()

	mock.ExpectGet("themepark:ledger:users").SetVal(`[{"id":"u1"}]`)
	data, err := s.Load(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"u1"}]`, string(data))

	mock.ExpectGet("themepark:ledger:orders").RedisNil()
	data, err = s.Load(ctx, "orders")
	require.NoError(t, err)
	assert.Nil(t, data)

	boom := errors.New("connection lost")
	mock.ExpectGet("themepark:ledger:payments").SetErr(boom)
	_, err = s.Load(ctx, "payments")
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := newRedisStore(db)
	ctx := context.Background()

	mock.ExpectSet("themepark:ledger:tickets", `[]`, 0).SetVal("OK")
	require.NoError(t, s.Save(ctx, "tickets", []byte(`[]`)))

	boom := errors.New("readonly replica")
	mock.ExpectSet("themepark:ledger:tickets", `[1]`, 0).SetErr(boom)
	assert.ErrorIs(t, s.Save(ctx, "tickets", []byte(`[1]`)), boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, want: true},
		{name: "deadlock", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}), want: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "context canceled", err: context.Canceled, want: false},
		{name: "other", err: errors.New("syntax error"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryable(tt.err))
		})
	}
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	s := &PostgresStore{}
	calls := 0
	boom := errors.New("permanent")

	err := s.withRetry(context.Background(), func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesTransientError(t *testing.T) {
	s := &PostgresStore{delays: []time.Duration{time.Millisecond, time.Millisecond}}
	calls := 0

	err := s.withRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}
