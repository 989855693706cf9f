// Package flash carries one-shot status messages from a write request to the
// page the user is redirected to.
package flash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Level string

const (
	Success Level = "success"
	Error   Level = "error"
	Info    Level = "info"
)

type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

type Store interface {
	Push(ctx context.Context, owner string, msgs ...Message) error
	// Pop returns and forgets the pending messages for owner.
	Pop(ctx context.Context, owner string) ([]Message, error)
}

type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{redis: redisClient, ttl: ttl}
}

func key(owner string) string {
	return fmt.Sprintf("flash:%s", owner)
}

func (s *RedisStore) Push(ctx context.Context, owner string, msgs ...Message) error {
	if owner == "" || len(msgs) == 0 {
		return nil
	}

	payload, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key(owner), payload, s.ttl).Err()
}

func (s *RedisStore) Pop(ctx context.Context, owner string) ([]Message, error) {
	if owner == "" {
		return nil, nil
	}

	payload, err := s.redis.GetDel(ctx, key(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var msgs []Message
	if err := json.Unmarshal(payload, &msgs); err != nil {
		return nil, fmt.Errorf("flash: decode messages: %w", err)
	}
	return msgs, nil
}

type discard struct{}

// Discard drops every message. It is used when Redis is not configured.
var Discard Store = discard{}

func (discard) Push(context.Context, string, ...Message) error { return nil }

func (discard) Pop(context.Context, string) ([]Message, error) { return nil, nil }
