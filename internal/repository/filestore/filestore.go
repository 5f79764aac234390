package filestore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"shortener/internal/domain/models"
	"shortener/internal/repository/dto"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidPath = errors.New("invalid file path")
	ErrCreateDir   = errors.New("failed to create directory")
	ErrOpenFile    = errors.New("failed to open file")
	ErrReadLink    = errors.New("failed to read link from file")
	ErrWriteLink   = errors.New("failed to write link to file")
	ErrClosed      = errors.New("file store is closed")
)

// Storage is an append-only JSON-lines log of bindings with an in-memory
// index rebuilt on open. Writes are serialized by a mutex, so the file must
// not be shared between processes.
type Storage struct {
	mu    sync.RWMutex
	path  string
	file  *os.File
	index map[string]models.Link
	log   zerolog.Logger
}

// Open replays the log at path, creating it and its directory when missing.
func Open(ctx context.Context, log zerolog.Logger, path string) (*Storage, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateDir, err)
	}

	file, err := os.OpenFile(absPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFile, err)
	}

	s := &Storage{
		path:  absPath,
		file:  file,
		index: make(map[string]models.Link),
		log:   log.With().Str("component", "filestore").Str("path", absPath).Logger(),
	}

	loaded, err := s.load(ctx)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	s.log.Info().Int("count", loaded).Msg("links loaded")
	return s, nil
}

func (s *Storage) load(ctx context.Context) (int, error) {
	if _, err := s.file.Seek(0, 0); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReadLink, err)
	}

	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	loaded := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var rec dto.LinkRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			s.log.Warn().Err(err).Msg("skipping malformed line")
			continue
		}

		// First write wins, mirroring PutIfAbsent.
		if _, exists := s.index[rec.ShortCode]; exists {
			s.log.Warn().Str("short_code", rec.ShortCode).Msg("skipping duplicate code")
			continue
		}
		s.index[rec.ShortCode] = rec.ToDomain()
		loaded++
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReadLink, err)
	}
	return loaded, nil
}

func (s *Storage) PutIfAbsent(ctx context.Context, link models.Link) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if link.ShortCode == "" || link.LongURL == "" {
		return false, models.ErrInvalidData
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return false, ErrClosed
	}

	if _, exists := s.index[link.ShortCode]; exists {
		return false, nil
	}

	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(dto.FromDomain(link))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrWriteLink, err)
	}
	data = append(data, '\n')

	if _, err := s.file.Write(data); err != nil {
		return false, fmt.Errorf("%w: %v", ErrWriteLink, err)
	}
	if err := s.file.Sync(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrWriteLink, err)
	}

	s.index[link.ShortCode] = link
	return true, nil
}

func (s *Storage) Get(ctx context.Context, shortCode string) (models.Link, error) {
	if err := ctx.Err(); err != nil {
		return models.Link{}, err
	}

	if shortCode == "" {
		return models.Link{}, models.ErrInvalidData
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.file == nil {
		return models.Link{}, ErrClosed
	}

	link, exists := s.index[shortCode]
	if !exists {
		return models.Link{}, models.ErrNotFound
	}
	return link, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.file == nil {
		return ErrClosed
	}
	if _, err := s.file.Stat(); err != nil {
		return fmt.Errorf("file store ping failed: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	if err != nil {
		return fmt.Errorf("failed to close file store: %w", err)
	}
	return nil
}
