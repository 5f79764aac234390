package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shortener/internal/domain/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	storageMaxOpenConnections     = 10
	storageMaxIdleConnections     = 5
	storageConnectionsMaxIdleTime = 2 * time.Minute
	storageConnectionsLifetime    = 30 * time.Minute
	storagePingTimeout            = 5 * time.Second
)

const schema = `
	CREATE TABLE IF NOT EXISTS links (
		short_code VARCHAR(32) PRIMARY KEY,
		long_url   TEXT        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

type Storage struct {
	db *sql.DB
}

// NewStorage opens a pool over the pgx stdlib driver and checks it with a ping.
// The schema is not touched; see Migrate.
func NewStorage(ctx context.Context, dsn string) (*Storage, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: dsn must not be empty", models.ErrInvalidData)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	initConnectionPools(db)

	ctxPing, cancel := context.WithTimeout(ctx, storagePingTimeout)
	defer cancel()

	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{db: db}, nil
}

func initConnectionPools(db *sql.DB) {
	db.SetMaxOpenConns(storageMaxOpenConnections)
	db.SetMaxIdleConns(storageMaxIdleConnections)
	db.SetConnMaxIdleTime(storageConnectionsMaxIdleTime)
	db.SetConnMaxLifetime(storageConnectionsLifetime)
}

// Migrate creates the links table when it does not exist.
func (p *Storage) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// PutIfAbsent relies on the primary key: a taken code makes the insert a
// no-op and RETURNING yields no row.
func (p *Storage) PutIfAbsent(ctx context.Context, link models.Link) (bool, error) {
	if link.ShortCode == "" || link.LongURL == "" {
		return false, models.ErrInvalidData
	}

	var code string
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO links (short_code, long_url)
		VALUES ($1, $2)
		ON CONFLICT (short_code) DO NOTHING
		RETURNING short_code`,
		link.ShortCode, link.LongURL,
	).Scan(&code)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert link: %w", err)
	}

	return true, nil
}

func (p *Storage) Get(ctx context.Context, shortCode string) (models.Link, error) {
	if shortCode == "" {
		return models.Link{}, fmt.Errorf("%w: short code must not be empty", models.ErrInvalidData)
	}

	var link models.Link
	err := p.db.QueryRowContext(ctx,
		"SELECT short_code, long_url, created_at FROM links WHERE short_code = $1",
		shortCode,
	).Scan(&link.ShortCode, &link.LongURL, &link.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Link{}, models.ErrNotFound
		}
		return models.Link{}, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

func (p *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storagePingTimeout)
	defer cancel()

	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (p *Storage) Close() error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
