package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/opencollective/ledger/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedisClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestNewRedisClient_ConnectionError(t *testing.T) {
	client, err := NewRedisClient(models.RedisConfig{Host: "127.0.0.1", Port: 1})

	assert.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestRedisClient_Set(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewRedisClientFromClient(db)

	mock.ExpectSet("ledger:balance:1", "[]", time.Minute).SetVal("OK")

	err := client.Set(context.Background(), "ledger:balance:1", "[]", time.Minute)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Set_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	client := NewRedisClientFromClient(db)

	mock.ExpectSet("ledger:balance:1", "[]", time.Minute).SetErr(errors.New("connection refused"))

	err := client.Set(context.Background(), "ledger:balance:1", "[]", time.Minute)

	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_GetAndDelete(t *testing.T) {
	client, mr := newMiniRedisClient(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k1", "v1"))
	require.NoError(t, mr.Set("k2", "v2"))

	val, err := client.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	require.NoError(t, client.Delete(ctx, "k1", "k2"))
	assert.False(t, mr.Exists("k1"))
	assert.False(t, mr.Exists("k2"))

	_, err = client.Get(ctx, "k1")
	assert.Equal(t, redis.Nil, err)

	assert.NoError(t, client.Delete(ctx))
}

func TestRedisClient_Locks(t *testing.T) {
	client, mr := newMiniRedisClient(t)
	ctx := context.Background()

	ok, err := client.AcquireLock(ctx, "ledger:lock:job", "token-a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.AcquireLock(ctx, "ledger:lock:job", "token-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// a foreign token must not release the lock
	require.NoError(t, client.ReleaseLock(ctx, "ledger:lock:job", "token-b"))
	assert.True(t, mr.Exists("ledger:lock:job"))

	require.NoError(t, client.ReleaseLock(ctx, "ledger:lock:job", "token-a"))
	assert.False(t, mr.Exists("ledger:lock:job"))

	mr.FastForward(2 * time.Minute)
	ok, err = client.AcquireLock(ctx, "ledger:lock:job", "token-b", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
