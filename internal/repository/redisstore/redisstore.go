package redisstore

import (
	"context"
	"errors"
	"fmt"

	"shortener/internal/domain/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "link:"

// Storage keeps each binding as a plain string key without TTL. SETNX is the
// conditional write, so concurrent writers on any host race safely.
type Storage struct {
	client redis.UniversalClient
}

func NewStorage(client redis.UniversalClient) *Storage {
	return &Storage{client: client}
}

func key(shortCode string) string {
	return keyPrefix + shortCode
}

func (r *Storage) PutIfAbsent(ctx context.Context, link models.Link) (bool, error) {
	if link.ShortCode == "" || link.LongURL == "" {
		return false, models.ErrInvalidData
	}

	ok, err := r.client.SetNX(ctx, key(link.ShortCode), link.LongURL, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to store link: %w", err)
	}
	return ok, nil
}

func (r *Storage) Get(ctx context.Context, shortCode string) (models.Link, error) {
	if shortCode == "" {
		return models.Link{}, models.ErrInvalidData
	}

	longURL, err := r.client.Get(ctx, key(shortCode)).Result()
	if errors.Is(err, redis.Nil) {
		return models.Link{}, models.ErrNotFound
	}
	if err != nil {
		return models.Link{}, fmt.Errorf("failed to get link: %w", err)
	}

	return models.Link{ShortCode: shortCode, LongURL: longURL}, nil
}

func (r *Storage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Storage) Close() error {
	return r.client.Close()
}
