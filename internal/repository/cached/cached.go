package cached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shortener/internal/domain/models"
	"shortener/internal/repository"
	"shortener/internal/repository/dto"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	keyPrefix  = "cache:link:"
	DefaultTTL = 24 * time.Hour
)

// Storage is a read-through Redis cache in front of another LinkStore.
// Bindings never change once written, so a cached entry can only be stale by
// being evicted; the TTL bounds memory, not correctness.
type Storage struct {
	next   repository.LinkStore
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

func NewStorage(next repository.LinkStore, client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Storage {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Storage{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "link_cache").Logger(),
	}
}

func key(shortCode string) string {
	return keyPrefix + shortCode
}

// PutIfAbsent writes through to the backing store and warms the cache only
// when the insert won.
func (c *Storage) PutIfAbsent(ctx context.Context, link models.Link) (bool, error) {
	ok, err := c.next.PutIfAbsent(ctx, link)
	if err != nil || !ok {
		return ok, err
	}

	c.set(ctx, link)
	return true, nil
}

func (c *Storage) Get(ctx context.Context, shortCode string) (models.Link, error) {
	if shortCode == "" {
		return models.Link{}, models.ErrInvalidData
	}

	if link, ok := c.lookup(ctx, shortCode); ok {
		return link, nil
	}

	link, err := c.next.Get(ctx, shortCode)
	if err != nil {
		return models.Link{}, err
	}

	c.set(ctx, link)
	return link, nil
}

// lookup treats every cache failure as a miss.
func (c *Storage) lookup(ctx context.Context, shortCode string) (models.Link, bool) {
	data, err := c.client.Get(ctx, key(shortCode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Link{}, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("short_code", shortCode).Msg("cache read failed")
		return models.Link{}, false
	}

	var rec dto.LinkRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.ShortCode != shortCode {
		c.log.Warn().Str("short_code", shortCode).Msg("dropping corrupt cache entry")
		c.client.Del(ctx, key(shortCode))
		return models.Link{}, false
	}

	return rec.ToDomain(), true
}

func (c *Storage) set(ctx context.Context, link models.Link) {
	data, err := json.Marshal(dto.FromDomain(link))
	if err != nil {
		c.log.Warn().Err(err).Str("short_code", link.ShortCode).Msg("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, key(link.ShortCode), data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("short_code", link.ShortCode).Msg("cache write failed")
	}
}

// Ping checks the backing store only; the cache is optional.
func (c *Storage) Ping(ctx context.Context) error {
	if err := c.next.Ping(ctx); err != nil {
		return err
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache unreachable")
	}
	return nil
}

func (c *Storage) Close() error {
	var errs []error
	if err := c.next.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.client.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close cache client: %w", err))
	}
	return errors.Join(errs...)
}
