package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisIdempotencyPrefix = "ems:idem:"

// RedisIdempotencyStore shares idempotency keys between server instances.
type RedisIdempotencyStore struct {
	client redis.UniversalClient
}

func NewRedisIdempotencyStore(client redis.UniversalClient) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (s *RedisIdempotencyStore) redisKey(key string) string {
	return redisIdempotencyPrefix + RequestHash([]byte(key))
}

func (s *RedisIdempotencyStore) Check(ctx context.Context, key, requestHash string) (StoredResponse, bool, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, fmt.Errorf("get idempotency key: %w", err)
	}
	var resp StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return StoredResponse{}, false, fmt.Errorf("decode idempotency key: %w", err)
	}
	if resp.Hash != requestHash {
		return StoredResponse{}, false, ErrIdempotencyConflict
	}
	return resp, true, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, resp StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	ok, err := s.client.SetNX(ctx, s.redisKey(key), raw, idempotencyTTL).Result()
	if err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	if ok {
		return nil
	}
	if _, _, err := s.Check(ctx, key, resp.Hash); err != nil {
		return err
	}
	return nil
}
