// Package lexicon scans submission text against multi-tier phrase
// lists. Every phrase is matched through two representations, unioned:
// a variant-tolerant regex over the raw lowercased text and an
// Aho-Corasick automaton over the tight-normalized text.
package lexicon

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"

	"trust-lab/domain"
	"trust-lab/errors"
	"trust-lab/normalize"
)

// Matches reports, per tier, how many phrases matched and which ones.
// A phrase counts at most once no matter how many representations or
// positions it was found at, so results are idempotent and independent
// of scan order.
type Matches struct {
	Counts  domain.TierCounts
	Phrases map[Tier][]string
}

type compiledPhrase struct {
	literal string
	pattern *regexp.Regexp
	tight   string
}

type tierSet struct {
	tier    Tier
	phrases []compiledPhrase
	machine *goahocorasick.Machine
}

type Matcher struct {
	log  *slog.Logger
	sets []tierSet
}

// NewMatcher compiles the built-in dataset plus any extra lists. Extra
// lists with a tier already present are merged into it.
func NewMatcher(log *slog.Logger, extra ...PhraseList) (*Matcher, error) {
	merged := BuiltinLists()
	for _, list := range extra {
		appended := false
		for i := range merged {
			if merged[i].Tier == list.Tier {
				merged[i].Phrases = append(merged[i].Phrases, list.Phrases...)
				appended = true
				break
			}
		}
		if !appended {
			merged = append(merged, list)
		}
	}

	m := &Matcher{log: log}
	total := 0
	for _, list := range merged {
		set, n, err := compileTier(list)
		if err != nil {
			return nil, err
		}
		total += n
		m.sets = append(m.sets, set)
	}
	if total == 0 {
		return nil, errors.ErrEmptyLexicon
	}
	return m, nil
}

func compileTier(list PhraseList) (tierSet, int, error) {
	set := tierSet{tier: list.Tier}
	tightForms := make(map[string]struct{})

	for _, phrase := range list.Phrases {
		if strings.TrimSpace(phrase) == "" {
			continue
		}
		pattern, err := variantPattern(phrase)
		if err != nil {
			return tierSet{}, 0, fmt.Errorf("tier %s phrase %q: %w", list.Tier, phrase, err)
		}
		tight := normalize.Tight(phrase)
		set.phrases = append(set.phrases, compiledPhrase{
			literal: phrase,
			pattern: pattern,
			tight:   tight,
		})
		if tight != "" {
			tightForms[tight] = struct{}{}
		}
	}

	if len(tightForms) > 0 {
		patterns := make([][]rune, 0, len(tightForms))
		for form := range tightForms {
			patterns = append(patterns, []rune(form))
		}
		machine := new(goahocorasick.Machine)
		if err := machine.Build(patterns); err != nil {
			return tierSet{}, 0, fmt.Errorf("tier %s automaton: %w", list.Tier, err)
		}
		set.machine = machine
	}
	return set, len(set.phrases), nil
}

// variantPattern compiles a phrase into a regex that tolerates any run
// of non-word characters between its letters, so "f u.c_k" still
// matches "fuck".
func variantPattern(phrase string) (*regexp.Regexp, error) {
	runes := []rune(phrase)
	parts := make([]string, 0, len(runes))
	for _, r := range runes {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return regexp.Compile(`(?i)` + strings.Join(parts, `[\W_]*`))
}

// Match scans the concatenated body and display name.
func (m *Matcher) Match(body, name string) Matches {
	raw := strings.ToLower(body + " " + name)
	tight := []rune(normalize.Tight(raw))

	out := Matches{Phrases: make(map[Tier][]string)}
	for _, set := range m.sets {
		tightHits := make(map[string]struct{})
		if set.machine != nil && len(tight) > 0 {
			for _, term := range set.machine.MultiPatternSearch(tight, false) {
				tightHits[string(term.Word)] = struct{}{}
			}
		}

		for _, p := range set.phrases {
			_, hitTight := tightHits[p.tight]
			if !hitTight && !p.pattern.MatchString(raw) {
				continue
			}
			out.Phrases[set.tier] = append(out.Phrases[set.tier], p.literal)
			switch set.tier {
			case TierExtreme:
				out.Counts.Extreme++
			case TierHigh:
				out.Counts.High++
			case TierModerate:
				out.Counts.Moderate++
			case TierSpam:
				out.Counts.Spam++
			}
		}
	}
	return out
}
