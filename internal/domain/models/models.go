package models

import (
	"errors"
	"time"
)

const (
	DefaultCodeLength = 6
	MinCodeLength     = 4
	MaxCodeLength     = 32
	MaxLongURLLength  = 2048
)

type (
	// Link binds a short code to the long URL it redirects to. A binding is
	// never mutated or removed once stored.
	Link struct {
		ShortCode string    // aBcD12, primary key, case-sensitive
		LongURL   string    // absolute URL with a scheme
		CreatedAt time.Time // zero when the medium does not keep it
	}

	// Created is the outcome of a successful create: the stored link and the
	// public short URL built for the caller.
	Created struct {
		Link     Link
		ShortURL string
	}
)

var (
	ErrInvalidData        = errors.New("invalid input data")
	ErrInvalidURL         = errors.New("invalid URL")
	ErrMissingCode        = errors.New("missing short code")
	ErrNotFound           = errors.New("url not found")
	ErrCodeSpaceExhausted = errors.New("no free short code after retries")
	ErrMethodNotAllowed   = errors.New("method not allowed")
	ErrInvalidHost        = errors.New("invalid host")
)
