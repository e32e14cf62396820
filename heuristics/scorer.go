// Package heuristics turns lexicon hits, statistical text properties
// and behavioral telemetry into a single additive risk score.
package heuristics

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"

	"trust-lab/domain"
	"trust-lab/lexicon"
)

// Weights holds every additive signal weight. All scoring constants
// live here so they can be tuned from configuration instead of being
// scattered through the logic.
type Weights struct {
	ExtremePhrase  int
	HighPhrase     int
	ModeratePhrase int
	SpamPhrase     int
	Repetition     int
	Uppercase      int
	LowEntropy     int
	HighEntropy    int
	PerLink        int
	LowTrustTLD    int
	InstantTyping  int
	PastedContent  int
	NoInteraction  int
}

// Thresholds holds the trigger conditions and decision boundaries.
type Thresholds struct {
	UppercaseRatio    float64
	UppercaseMinLen   int
	LowEntropy        float64
	LowEntropyMinLen  int
	HighEntropy       float64
	TypingMinBodyLen  int
	TypingMaxDuration int // milliseconds
	MinPointerEvents  int
	HardReject        int
	ShadowBan         int
}

// DefaultWeights are the production defaults. They were asserted by the
// operators rather than derived empirically; treat them as a starting
// point for tuning.
func DefaultWeights() Weights {
	return Weights{
		ExtremePhrase:  10,
		HighPhrase:     5,
		ModeratePhrase: 2,
		SpamPhrase:     4,
		Repetition:     3,
		Uppercase:      3,
		LowEntropy:     3,
		HighEntropy:    2,
		PerLink:        2,
		LowTrustTLD:    5,
		InstantTyping:  10,
		PastedContent:  1,
		NoInteraction:  4,
	}
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		UppercaseRatio:    0.6,
		UppercaseMinLen:   10,
		LowEntropy:        1.5,
		LowEntropyMinLen:  20,
		HighEntropy:       5.5,
		TypingMinBodyLen:  50,
		TypingMaxDuration: 1000,
		MinPointerEvents:  5,
		HardReject:        15,
		ShadowBan:         8,
	}
}

// DefaultLowTrustTLDs are domain suffixes disproportionately used by
// throwaway spam infrastructure.
func DefaultLowTrustTLDs() []string {
	return []string{".xyz", ".top", ".gq", ".tk", ".ml", ".ga", ".cf"}
}

var (
	punctRunRe = regexp.MustCompile(`!{3,}|\?{3,}`)
	linkRe     = regexp.MustCompile(`https?://\S+`)
)

// aggressiveRepetition reports "!!!"-style punctuation runs or any
// single rune repeated five or more times in a row. The latter cannot
// be a regexp here because RE2 has no backreferences.
func aggressiveRepetition(text string) bool {
	if punctRunRe.MatchString(text) {
		return true
	}
	var last rune = -1
	run := 0
	for _, r := range text {
		if r == last {
			run++
			if run >= 5 {
				return true
			}
			continue
		}
		last = r
		run = 1
	}
	return false
}

// Scorer is pure and synchronous; one instance is shared by all
// request handlers without coordination.
type Scorer struct {
	matcher     *lexicon.Matcher
	weights     Weights
	thresholds  Thresholds
	lowTrustTLD []string
	log         *slog.Logger
}

func NewScorer(matcher *lexicon.Matcher, weights Weights, thresholds Thresholds, lowTrustTLDs []string, log *slog.Logger) *Scorer {
	return &Scorer{
		matcher:     matcher,
		weights:     weights,
		thresholds:  thresholds,
		lowTrustTLD: lowTrustTLDs,
		log:         log,
	}
}

// Score evaluates one submission body and display name together with
// its telemetry. Deterministic; every triggered category appends one
// reason tag, except the extreme tier which names matched phrases for
// audit.
func (s *Scorer) Score(body, name string, metrics *domain.BehavioralMetrics) domain.RiskAssessment {
	res := domain.RiskAssessment{Approved: true}

	hits := s.matcher.Match(body, name)
	res.Metadata.TierMatches = hits.Counts

	res.RiskScore += hits.Counts.Extreme * s.weights.ExtremePhrase
	for _, phrase := range hits.Phrases[lexicon.TierExtreme] {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Extreme toxicity: %s", phrase))
	}
	if hits.Counts.High > 0 {
		res.RiskScore += hits.Counts.High * s.weights.HighPhrase
		res.Reasons = append(res.Reasons, "High toxicity")
	}
	if hits.Counts.Moderate > 0 {
		res.RiskScore += hits.Counts.Moderate * s.weights.ModeratePhrase
		res.Reasons = append(res.Reasons, "Moderate toxicity")
	}
	if hits.Counts.Spam > 0 {
		res.RiskScore += hits.Counts.Spam * s.weights.SpamPhrase
		res.Reasons = append(res.Reasons, "Spam pattern")
	}

	if aggressiveRepetition(body) {
		res.RiskScore += s.weights.Repetition
		res.Reasons = append(res.Reasons, "Aggressive punctuation/repetition")
	}

	res.Metadata.UppercaseRatio = uppercaseRatio(body)
	if res.Metadata.UppercaseRatio > s.thresholds.UppercaseRatio && len(body) > s.thresholds.UppercaseMinLen {
		res.RiskScore += s.weights.Uppercase
		res.Reasons = append(res.Reasons, "Excessive uppercase")
	}

	res.Metadata.Entropy = Entropy(body)
	if res.Metadata.Entropy < s.thresholds.LowEntropy && len(body) > s.thresholds.LowEntropyMinLen {
		res.RiskScore += s.weights.LowEntropy
		res.Reasons = append(res.Reasons, "Low entropy (repetitive)")
	}
	if res.Metadata.Entropy > s.thresholds.HighEntropy {
		res.RiskScore += s.weights.HighEntropy
		res.Reasons = append(res.Reasons, "High entropy (gibberish)")
	}

	links := linkRe.FindAllString(body, -1)
	res.Metadata.LinkCount = len(links)
	if len(links) > 0 {
		res.RiskScore += s.weights.PerLink * len(links)
		suspicious := lo.SomeBy(links, func(link string) bool {
			return lo.SomeBy(s.lowTrustTLD, func(tld string) bool {
				return strings.Contains(strings.ToLower(link), tld)
			})
		})
		if suspicious {
			res.RiskScore += s.weights.LowTrustTLD
			res.Reasons = append(res.Reasons, "Suspicious link domain")
		}
	}

	// Behavioral categories only fire when the client actually sent
	// telemetry; absent metrics stay risk-neutral.
	if metrics != nil {
		if len(body) > s.thresholds.TypingMinBodyLen && metrics.TypingDurationMs < s.thresholds.TypingMaxDuration {
			if metrics.PasteCount == 0 {
				// Nobody types 50+ characters in under a second.
				res.RiskScore += s.weights.InstantTyping
				res.Reasons = append(res.Reasons, "Bot-like typing speed")
			} else {
				res.RiskScore += s.weights.PastedContent
			}
		}

		if metrics.PointerEventCount < s.thresholds.MinPointerEvents && metrics.FocusEventCount == 0 {
			res.RiskScore += s.weights.NoInteraction
			res.Reasons = append(res.Reasons, "No human interaction")
		}
	}

	if info := whatlanggo.Detect(body); info.IsReliable() {
		res.Metadata.Language = info.Lang.Iso6391()
	}

	res.Reasons = lo.Uniq(res.Reasons)

	switch {
	case res.RiskScore >= s.thresholds.HardReject:
		res.Approved = false
		res.ShadowBan = false
	case res.RiskScore >= s.thresholds.ShadowBan:
		res.Approved = true
		res.ShadowBan = true
	}
	return res
}

// Entropy computes the Shannon entropy over the rune frequency of text.
func Entropy(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	freq := make(map[rune]int, len(runes))
	for _, r := range runes {
		freq[r]++
	}
	entropy := 0.0
	total := float64(len(runes))
	for _, count := range freq {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

func uppercaseRatio(text string) float64 {
	if len(text) == 0 {
		return 0
	}
	upper := 0
	runes := []rune(text)
	for _, r := range runes {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(len(runes))
}
