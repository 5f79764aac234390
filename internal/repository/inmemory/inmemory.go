package inmemory

import (
	"context"
	"sync"
	"time"

	"shortener/internal/domain/models"
)

// Storage keeps bindings in a process-local map. Conditional inserts are
// serialized by a mutex, so it is only safe for a single process.
type Storage struct {
	mu   sync.RWMutex
	data map[string]models.Link
	now  func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		data: make(map[string]models.Link),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (m *Storage) PutIfAbsent(ctx context.Context, link models.Link) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if link.ShortCode == "" || link.LongURL == "" {
		return false, models.ErrInvalidData
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[link.ShortCode]; exists {
		return false, nil
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = m.now()
	}
	m.data[link.ShortCode] = link
	return true, nil
}

func (m *Storage) Get(ctx context.Context, shortCode string) (models.Link, error) {
	if err := ctx.Err(); err != nil {
		return models.Link{}, err
	}

	if shortCode == "" {
		return models.Link{}, models.ErrInvalidData
	}

	m.mu.RLock()
	link, exists := m.data[shortCode]
	m.mu.RUnlock()

	if !exists {
		return models.Link{}, models.ErrNotFound
	}
	return link, nil
}

// Len reports the number of stored bindings.
func (m *Storage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *Storage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *Storage) Close() error {
	return nil
}
