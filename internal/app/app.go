// Package app wires the configured storage, service and gateway together for
// the binaries.
package app

import (
	"context"
	"fmt"

	"shortener/internal/config"
	"shortener/internal/generator"
	"shortener/internal/http/gateway"
	"shortener/internal/http/server"
	"shortener/internal/repository"
	"shortener/internal/repository/cached"
	"shortener/internal/repository/dynamostore"
	"shortener/internal/repository/filestore"
	"shortener/internal/repository/inmemory"
	"shortener/internal/repository/postgres"
	"shortener/internal/repository/redisstore"
	"shortener/internal/services/url_shortener"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Migrator is implemented by stores whose schema must be created up front.
type Migrator interface {
	Migrate(ctx context.Context) error
}

type App struct {
	Store   repository.LinkStore
	Service *url_shortener.URLShortener
	Gateway *gateway.Gateway

	base repository.LinkStore
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	base, err := newBaseStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store := base
	if cfg.CacheEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store = cached.NewStorage(base, client, cfg.CacheTTL, log)
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("read cache enabled")
	}

	gen, err := generator.New(cfg.CodeLength)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	svc := url_shortener.NewServiceURLShortener(store, gen, url_shortener.Options{
		MaxAttempts: cfg.MaxAttempts,
		Scheme:      cfg.ShortURLScheme,
		Hosts: url_shortener.HostPolicy{
			PublicHost:   cfg.PublicHost,
			DefaultHost:  cfg.DefaultHost,
			AllowedHosts: cfg.AllowedHosts,
		},
		ReservedCodes: server.ReservedCodes(),
	}, log)

	return &App{
		Store:   store,
		Service: svc,
		Gateway: gateway.New(svc, log, cfg.ExposeErrors),
		base:    base,
	}, nil
}

func newBaseStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.LinkStore, error) {
	log.Info().Str("backend", cfg.StorageBackend).Msg("opening storage")

	switch cfg.StorageBackend {
	case config.BackendMemory:
		return inmemory.NewStorage(), nil

	case config.BackendFile:
		s, err := filestore.Open(ctx, log, cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return s, nil

	case config.BackendPostgres:
		s, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return s, nil

	case config.BackendRedis:
		s := redisstore.NewStorage(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return s, nil

	case config.BackendDynamoDB:
		client, err := dynamostore.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamodb client: %w", err)
		}
		return dynamostore.NewStorage(client, cfg.TableName), nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, cfg.StorageBackend)
	}
}

// Migrate creates the backing table when the store has one.
func (a *App) Migrate(ctx context.Context) error {
	m, ok := a.base.(Migrator)
	if !ok {
		return nil
	}
	return m.Migrate(ctx)
}

// NeedsMigration reports whether the store has a schema to create.
func (a *App) NeedsMigration() bool {
	_, ok := a.base.(Migrator)
	return ok
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
