package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const previewKey = "storebot:preview_sku"

// MemoryPreviewStore keeps the preview SKU in process memory.
type MemoryPreviewStore struct {
	mu  sync.RWMutex
	sku string
}

func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{}
}

func (s *MemoryPreviewStore) Set(ctx context.Context, sku string) error {
	s.mu.Lock()
	s.sku = sku
	s.mu.Unlock()
	return nil
}

func (s *MemoryPreviewStore) Get(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sku, nil
}

func (s *MemoryPreviewStore) Close() error { return nil }

// RedisPreviewStore shares the preview SKU between server replicas.
type RedisPreviewStore struct {
	client *redis.Client
}

func NewRedisPreviewStore(ctx context.Context, url string) (*RedisPreviewStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisPreviewStore{client: client}, nil
}

func (s *RedisPreviewStore) Set(ctx context.Context, sku string) error {
	if err := s.client.Set(ctx, previewKey, sku, 0).Err(); err != nil {
		return fmt.Errorf("set preview sku: %w", err)
	}
	return nil
}

func (s *RedisPreviewStore) Get(ctx context.Context) (string, error) {
	sku, err := s.client.Get(ctx, previewKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get preview sku: %w", err)
	}
	return sku, nil
}

func (s *RedisPreviewStore) Close() error {
	return s.client.Close()
}

// NewPreviewStore returns a Redis-backed store when url is set, otherwise
// an in-memory one.
func NewPreviewStore(ctx context.Context, url string) (PreviewStore, error) {
	if url == "" {
		return NewMemoryPreviewStore(), nil
	}
	s, err := NewRedisPreviewStore(ctx, url)
	if err != nil {
		return nil, err
	}
	log.Info().Str("component", "store").Msg("preview sku shared via redis")
	return s, nil
}
