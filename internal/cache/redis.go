package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSessions struct {
	client *redis.Client
	prefix string
}

// NewRedisSessions connects to redisURL and checks the connection.
func NewRedisSessions(redisURL, prefix string) (*RedisSessions, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSessionsWithClient(client, prefix), nil
}

func NewRedisSessionsWithClient(client *redis.Client, prefix string) *RedisSessions {
	return &RedisSessions{
		client: client,
		prefix: prefix + "session:",
	}
}

func (r *RedisSessions) Close() error {
	return r.client.Close()
}

func (r *RedisSessions) Create(ctx context.Context, s Session, ttl time.Duration) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	token := newToken()
	if err := r.client.Set(ctx, r.prefix+tokenKey(token), data, ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set error: %w", err)
	}
	return token, nil
}

func (r *RedisSessions) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	data, err := r.client.Get(ctx, r.prefix+tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessions) Revoke(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.prefix+tokenKey(token)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}

// Clear removes every session under the prefix.
func (r *RedisSessions) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}
