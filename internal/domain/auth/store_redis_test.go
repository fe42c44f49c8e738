package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	store := NewRedisSessionStore(client)
	record := SessionRecord{
		ID:        uuid.NewString(),
		User:      User{Name: "Admin User", Email: "admin@company.com", Role: RoleAdmin},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: time.Now().Add(time.Minute).UTC().Truncate(time.Second),
	}
	require.NoError(t, store.CreateSession(ctx, record))

	got, err := store.GetSession(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.User, got.User)
	assert.True(t, got.ExpiresAt.Equal(record.ExpiresAt))

	ttl := client.TTL(ctx, redisSessionPrefix+record.ID).Val()
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, store.RevokeSession(ctx, record.ID, time.Now()))
	_, err = store.GetSession(ctx, record.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	expired := record
	expired.ID = uuid.NewString()
	expired.ExpiresAt = time.Now().Add(-time.Second)
	assert.ErrorIs(t, store.CreateSession(ctx, expired), ErrSessionExpired)
}
