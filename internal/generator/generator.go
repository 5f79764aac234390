package generator

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"shortener/internal/domain/models"
)

// Alphabet is the 62-symbol code alphabet. Codes are case-sensitive.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generator produces random short codes of a fixed length. Uniqueness is not
// guaranteed; callers resolve collisions against the store.
type Generator struct {
	length int
	source io.Reader
}

// New returns a generator backed by crypto/rand.
func New(length int) (*Generator, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: code length must be positive, got %d", models.ErrInvalidData, length)
	}
	return &Generator{length: length, source: rand.Reader}, nil
}

// Length reports the configured code length.
func (g *Generator) Length() int {
	return g.length
}

func (g *Generator) Generate() (string, error) {
	return generate(g.source, g.length)
}

// Generate returns a code of exactly length characters drawn uniformly from
// Alphabet.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("%w: code length must be positive, got %d", models.ErrInvalidData, length)
	}
	return generate(rand.Reader, length)
}

func generate(source io.Reader, length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(source, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("failed to read randomness: %w", err)
		}
		b[i] = Alphabet[n.Int64()]
	}
	return string(b), nil
}
