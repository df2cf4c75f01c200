package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bilgisen/sevennews/internal/models"
)

// Redis keeps each item as a JSON string and indexes ids in a sorted set
// scored by CreatedAt.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to redisURL and checks the connection.
func NewRedis(redisURL, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisWithClient(client, prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) docKey(id string) string {
	return r.prefix + "news:doc:" + id
}

func (r *Redis) indexKey() string {
	return r.prefix + "news:by_created"
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Insert(ctx context.Context, item models.NewsItem) (string, error) {
	item.ID = newID()
	if err := r.write(ctx, item); err != nil {
		return "", fmt.Errorf("insert news: %w", err)
	}
	return item.ID, nil
}

func (r *Redis) Get(ctx context.Context, id string) (*models.NewsItem, error) {
	data, err := r.client.Get(ctx, r.docKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get error: %w", err)
	}

	var item models.NewsItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal news item: %w", err)
	}
	return &item, nil
}

func (r *Redis) Replace(ctx context.Context, item models.NewsItem) error {
	exists, err := r.client.Exists(ctx, r.docKey(item.ID)).Result()
	if err != nil {
		return fmt.Errorf("redis exists error: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}
	if err := r.write(ctx, item); err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.docKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

func (r *Redis) List(ctx context.Context, limit int) ([]models.NewsItem, error) {
	ids, err := r.pageIDs(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.NewsItem{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.docKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget error: %w", err)
	}

	items := make([]models.NewsItem, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// Index entry without a document; deleted between the two reads.
			continue
		}
		var item models.NewsItem
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal news item: %w", err)
		}
		items = append(items, item)
	}

	sortNewestFirst(items)
	return truncate(items, limit), nil
}

// pageIDs returns the newest limit ids plus every id sharing the score of the
// last one. The index orders ties by member in reverse, so the caller sorts
// and truncates to break ties by ascending id.
func (r *Redis) pageIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("redis zrevrange error: %w", err)
		}
		return ids, nil
	}

	page, err := r.client.ZRevRangeWithScores(ctx, r.indexKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange error: %w", err)
	}
	ids := make([]string, 0, len(page))
	if len(page) < limit {
		for _, z := range page {
			ids = append(ids, z.Member.(string))
		}
		return ids, nil
	}

	edge := page[len(page)-1].Score
	for _, z := range page {
		if z.Score > edge {
			ids = append(ids, z.Member.(string))
		}
	}
	score := strconv.FormatFloat(edge, 'f', -1, 64)
	tied, err := r.client.ZRangeByScore(ctx, r.indexKey(), &redis.ZRangeBy{Min: score, Max: score}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrangebyscore error: %w", err)
	}
	return append(ids, tied...), nil
}

func (r *Redis) write(ctx context.Context, item models.NewsItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal news item: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.docKey(item.ID), data, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(item.CreatedAt), Member: item.ID})
		return nil
	})
	return err
}
