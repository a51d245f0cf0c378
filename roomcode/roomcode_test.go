package roomcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_New(t *testing.T) {
	gen, err := NewGenerator("", 0)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := gen.New()

		assert.Len(t, code, DefaultLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(DefaultAlphabet, r), "unexpected character %q in %s", r, code)
		}
		seen[code] = true
	}

	// 1000 draws from a 62^8 space should never collide
	assert.Len(t, seen, 1000)
}

func TestGenerator_CustomSettings(t *testing.T) {
	gen, err := NewGenerator("ABC", 4)
	require.NoError(t, err)

	code := gen.New()
	assert.Len(t, code, 4)
	for _, r := range code {
		assert.True(t, strings.ContainsRune("ABC", r))
	}
}

func TestNewGenerator_Validation(t *testing.T) {
	tests := []struct {
		name     string
		alphabet string
		length   int
		wantErr  bool
	}{
		{name: "defaults", alphabet: "", length: 0},
		{name: "negative length", alphabet: "", length: -1, wantErr: true},
		{name: "oversized length", alphabet: "", length: 65, wantErr: true},
		{name: "single-character alphabet", alphabet: "A", length: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGenerator(tt.alphabet, tt.length)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
