package url_shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shortener/internal/domain/models"
	"shortener/internal/validation"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxAttempts = 5
	DefaultScheme      = "https"
)

/*
LinkStore - the persistence the service depends on; any repository.LinkStore fits.
*/
type LinkStore interface {
	PutIfAbsent(ctx context.Context, link models.Link) (bool, error)
	Get(ctx context.Context, shortCode string) (models.Link, error)
	Ping(ctx context.Context) error
}

//go:generate mockgen -destination=../../mocks/mock_code_generator.go -package=mocks shortener/internal/services/url_shortener CodeGenerator
type CodeGenerator interface {
	Generate() (string, error)
}

type Options struct {
	MaxAttempts int
	Scheme      string
	Hosts       HostPolicy

	// ReservedCodes are never issued, e.g. paths the router serves itself.
	ReservedCodes []string
}

// URLShortener assigns short codes to long URLs and resolves them back.
type URLShortener struct {
	storage     LinkStore
	generator   CodeGenerator
	maxAttempts int
	scheme      string
	hosts       HostPolicy
	reserved    map[string]struct{}
	log         zerolog.Logger
	now         func() time.Time
}

func NewServiceURLShortener(storage LinkStore, generator CodeGenerator, opts Options, log zerolog.Logger) *URLShortener {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Scheme == "" {
		opts.Scheme = DefaultScheme
	}
	if opts.Hosts.DefaultHost == "" {
		opts.Hosts.DefaultHost = DefaultHost
	}

	reserved := make(map[string]struct{}, len(opts.ReservedCodes))
	for _, c := range opts.ReservedCodes {
		reserved[c] = struct{}{}
	}

	return &URLShortener{
		storage:     storage,
		generator:   generator,
		maxAttempts: opts.MaxAttempts,
		scheme:      opts.Scheme,
		hosts:       opts.Hosts,
		reserved:    reserved,
		log:         log.With().Str("component", "url_shortener").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create binds longURL to a fresh code and returns the short URL built on the
// host chosen by the host policy. Collisions are retried with a new code up to
// the configured attempt count.
func (s *URLShortener) Create(ctx context.Context, longURL, host string) (models.Created, error) {
	if err := validation.LongURL(longURL); err != nil {
		return models.Created{}, err
	}

	domain, accepted := s.hosts.Resolve(host)
	if !accepted {
		s.log.Warn().Err(fmt.Errorf("%w: %q", models.ErrInvalidHost, host)).Str("using", domain).Msg("host header not accepted")
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.generator.Generate()
		if err != nil {
			return models.Created{}, fmt.Errorf("failed to generate code: %w", err)
		}
		if _, ok := s.reserved[code]; ok {
			s.log.Debug().Str("short_code", code).Int("attempt", attempt).Msg("reserved short code skipped")
			continue
		}

		link := models.Link{
			ShortCode: code,
			LongURL:   longURL,
			CreatedAt: s.now(),
		}

		ok, err := s.storage.PutIfAbsent(ctx, link)
		if err != nil {
			return models.Created{}, fmt.Errorf("failed to store link: %w", err)
		}
		if ok {
			return models.Created{
				Link:     link,
				ShortURL: s.ShortURL(domain, code),
			}, nil
		}

		s.log.Debug().Str("short_code", code).Int("attempt", attempt).Msg("short code collision")
	}

	return models.Created{}, fmt.Errorf("%w: %d attempts", models.ErrCodeSpaceExhausted, s.maxAttempts)
}

// Resolve returns the link bound to shortCode.
func (s *URLShortener) Resolve(ctx context.Context, shortCode string) (models.Link, error) {
	if shortCode == "" {
		return models.Link{}, models.ErrMissingCode
	}
	// No code this long is ever issued; some stores reject such keys outright.
	if len(shortCode) > models.MaxCodeLength {
		return models.Link{}, fmt.Errorf("%w: code too long", models.ErrNotFound)
	}

	link, err := s.storage.Get(ctx, shortCode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Link{}, models.ErrNotFound
		}
		return models.Link{}, fmt.Errorf("failed to get link: %w", err)
	}
	return link, nil
}

// ShortURL formats scheme://host/code.
func (s *URLShortener) ShortURL(host, shortCode string) string {
	return fmt.Sprintf("%s://%s/%s", s.scheme, host, shortCode)
}

// PingStorage проверяет соединение с хранилищем
func (s *URLShortener) PingStorage(ctx context.Context) error {
	if err := s.storage.Ping(ctx); err != nil {
		return fmt.Errorf("storage ping failed: %w", err)
	}
	return nil
}
