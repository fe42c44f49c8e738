package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "ems:session:"

// RedisSessionStore keeps session records as JSON values that expire with
// the session, so purging is left to redis.
type RedisSessionStore struct {
	client redis.UniversalClient
}

func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) CreateSession(ctx context.Context, record SessionRecord) error {
	if record.ID == "" {
		return errors.New("session id cannot be empty")
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisSessionPrefix+record.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) GetSession(ctx context.Context, id string) (SessionRecord, error) {
	raw, err := s.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("redis get: %w", err)
	}
	var record SessionRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return SessionRecord{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return record, nil
}

// RevokeSession drops the key; a missing record reads as revoked anyway.
func (s *RedisSessionStore) RevokeSession(ctx context.Context, id string, _ time.Time) error {
	if err := s.client.Del(ctx, redisSessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) PurgeSessions(context.Context, time.Time) (int64, error) {
	return 0, nil
}
