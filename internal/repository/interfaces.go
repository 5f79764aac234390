package repository

import (
	"context"

	"shortener/internal/domain/models"
)

// LinkStore is the persistence contract for short code bindings. Implementations
// must make PutIfAbsent atomic with the medium's own conditional write, since
// callers may run in separate processes.
//
//go:generate mockgen -destination=../mocks/mock_link_store.go -package=mocks shortener/internal/repository LinkStore
type LinkStore interface {
	// PutIfAbsent stores link only when its short code is unbound. It reports
	// false, without error, when the code is already taken.
	PutIfAbsent(ctx context.Context, link models.Link) (bool, error)
	// Get returns models.ErrNotFound for an unknown code.
	Get(ctx context.Context, shortCode string) (models.Link, error)
	Ping(ctx context.Context) error
	Close() error
}
