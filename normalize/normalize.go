// Package normalize canonicalizes raw submission text so that phrase
// matching survives common obfuscation: leet speak, diacritics,
// interleaved punctuation and stretched characters.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lowercases, folds diacritics and leet speak, strips punctuation
// and symbols, collapses runs of identical runes to one occurrence and
// squeezes whitespace runs to a single space. Deterministic, total and
// idempotent. Collapsing repeated runes also collapses legitimate
// doubled letters ("good" becomes "god"); that tradeoff is accepted to
// defeat "chuuutiya"-style stretching.
func Fold(text string) string {
	return fold(text, true)
}

// Tight is Fold with whitespace removed entirely, for matching phrases
// that have been split across spaces ("k i l l").
func Tight(text string) string {
	return fold(text, false)
}

func fold(text string, keepSpace bool) string {
	if text == "" {
		return ""
	}

	decomposed := norm.NFD.String(strings.ToLower(text))
	out := make([]rune, 0, len(decomposed))
	var last rune = -1
	pendingSpace := false

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsSpace(r) {
			// In tight mode the space vanishes entirely, so runs of the
			// same rune collapse across the former word boundary.
			if keepSpace && len(out) > 0 {
				pendingSpace = true
				last = -1
			}
			continue
		}
		r = simplifyRune(r)
		if isNoise(r) {
			continue
		}
		if r == last {
			continue
		}
		if pendingSpace {
			out = append(out, ' ')
			pendingSpace = false
		}
		out = append(out, r)
		last = r
	}
	return string(out)
}

// simplifyRune maps common leet speak characters back to their standard
// alphabet counterparts.
func simplifyRune(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '1':
		return 'i'
	case '0':
		return 'o'
	case '3':
		return 'e'
	case '5', '$':
		return 's'
	case '8':
		return 'b'
	default:
		return r
	}
}

// isNoise identifies characters ignored during the matching phase.
func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
