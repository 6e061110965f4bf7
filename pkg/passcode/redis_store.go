package passcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "mfa:code"

// RedisCodeStore implements CodeStore on Redis. Server-side key TTL provides
// the expiry mechanism, so expired codes become unreadable without any
// client-side cleanup.
type RedisCodeStore struct {
	redis  *redis.Client
	prefix string
}

// NewRedisCodeStore creates a Redis-backed code store.
func NewRedisCodeStore(redisClient *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{
		redis:  redisClient,
		prefix: codeKeyPrefix,
	}
}

func (s *RedisCodeStore) key(subject string) string {
	return s.prefix + ":" + subject
}

func (s *RedisCodeStore) Put(ctx context.Context, subject string, record Record, ttl time.Duration) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode code record: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(subject), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, subject string) (Record, error) {
	data, err := s.redis.Get(ctx, s.key(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrCodeNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("failed to decode code record: %w", err)
	}

	return record, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, subject string) error {
	if err := s.redis.Del(ctx, s.key(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}
