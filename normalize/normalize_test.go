package normalize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Lowercase and punctuation stripping",
			input:    "Hello, World!",
			expected: "helo world",
		},
		{
			name:     "Leet speak digits",
			input:    "h3ll0 b4d b0y",
			expected: "helo bad boy",
		},
		{
			name:     "Symbol substitutions",
			input:    "c@$h",
			expected: "cash",
		},
		{
			name:     "Interleaved punctuation",
			input:    "f.u.c.k",
			expected: "fuck",
		},
		{
			name:     "Stretched characters",
			input:    "chuuutiya",
			expected: "chutiya",
		},
		{
			name:     "Doubled letters collapse too",
			input:    "good",
			expected: "god",
		},
		{
			name:     "Diacritic folding",
			input:    "fück yoü",
			expected: "fuck you",
		},
		{
			name:     "Whitespace runs squeeze to one space",
			input:    "a   lot \t of   space",
			expected: "a lot of space",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Fold(tt.input))
		})
	}
}

func TestTight(t *testing.T) {
	req := require.New(t)

	req.Equal("kilyourself", Tight("K i l l  y.o.u.r.s.e.l.f"))
	req.Equal("fuck", Tight("f u.c_k"))
	// The former word boundary disappears, so identical runes on either
	// side of it collapse as well.
	req.Equal("a", Tight("aa aa"))
	req.Equal("", Tight("   "))
}

func TestFoldIdempotent(t *testing.T) {
	req := require.New(t)

	inputs := []string{
		"Hello, World!",
		"h3ll0 b4d b0y",
		"f.u.c.k y0u",
		"chuuutiya",
		"Un été avec un blaireau",
		"MiXeD CaSe   And   Space",
		"",
	}
	for _, in := range inputs {
		once := Fold(in)
		req.Equal(once, Fold(once), "Fold must be idempotent for %q", in)

		tight := Tight(in)
		req.Equal(tight, Tight(tight), "Tight must be idempotent for %q", in)
	}
}
