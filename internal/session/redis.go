package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"votedesk/pkg/redis"
)

// RedisStore keeps tokens in Redis so several console instances share sessions
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store whose tokens expire after ttl without use
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sid string, ch Channel) string {
	return s.client.KeyBuilder.KeySessionToken(sid, string(ch))
}

func (s *RedisStore) Get(ctx context.Context, sid string, ch Channel) (string, error) {
	token, err := s.client.Get(ctx, s.key(sid, ch))
	if errors.Is(err, redis.ErrNil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	// Sliding expiry; a failed refresh only shortens the session
	_ = s.client.Expire(ctx, s.key(sid, ch), s.ttl)
	return token, nil
}

func (s *RedisStore) Set(ctx context.Context, sid string, ch Channel, token string) error {
	if err := s.client.Set(ctx, s.key(sid, ch), token, s.ttl); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sid string, ch Channel) error {
	if err := s.client.Delete(ctx, s.key(sid, ch)); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
