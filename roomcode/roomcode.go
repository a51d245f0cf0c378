package roomcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultLength   = 8
	DefaultAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Generator produces short alphanumeric room codes, convenient to type
// and collision-resistant among concurrently live rooms. Codes are not
// meant to be unguessable; uniqueness against live rooms is the
// caller's job.
type Generator struct {
	alphabet string
	length   int
}

// NewGenerator builds a Generator. A zero length or empty alphabet
// falls back to the defaults.
func NewGenerator(alphabet string, length int) (*Generator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if length == 0 {
		length = DefaultLength
	}
	if length < 1 || length > 64 {
		return nil, fmt.Errorf("room code length must be between 1 and 64, got %d", length)
	}
	if len(alphabet) < 2 {
		return nil, fmt.Errorf("room code alphabet must have at least 2 characters, got %d", len(alphabet))
	}
	return &Generator{alphabet: alphabet, length: length}, nil
}

func (g *Generator) New() string {
	return gonanoid.MustGenerate(g.alphabet, g.length)
}
