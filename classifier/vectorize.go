package classifier

import (
	"hash/fnv"
	"strings"
)

// Vectorizer maps tokens to fixed-size feature indices using the
// hashing trick, so the vocabulary never has to be shipped alongside
// the weights. The size must match the one the weights were exported
// with.
type Vectorizer struct {
	size int
}

func NewVectorizer(size int) Vectorizer {
	return Vectorizer{size: size}
}

// Indices returns the deduplicated feature indices of text. Minimal
// preprocessing on purpose: only lowercasing and whitespace splitting.
// Any folding of obfuscated characters is the caller's concern, so the
// same model can be fed raw or normalized text.
func (v Vectorizer) Indices(text string) []int {
	words := strings.Fields(strings.ToLower(text))
	seen := make(map[int]struct{}, len(words))
	out := make([]int, 0, len(words))
	for _, w := range words {
		idx := v.Index(w)
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

// Index hashes a single token into the feature space.
func (v Vectorizer) Index(token string) int {
	h := fnv.New32a()
	h.Write([]byte(token))
	return int(h.Sum32()) % v.size
}
