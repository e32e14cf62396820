// Package decision fuses lexicon-boosted classifier probabilities into
// a severity bucket and an allow verdict.
package decision

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"trust-lab/classifier"
	"trust-lab/domain"
	"trust-lab/normalize"
)

// Thresholds are the raw-channel decision boundaries. Asserted rather
// than empirically derived; configurable defaults, not load-bearing
// constants.
type Thresholds struct {
	High     float64
	Moderate float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{High: 0.40, Moderate: 0.60}
}

// Boost is the fixed addition applied per channel when any severe term
// matches, independent of the classifier. It keeps obviously abusive
// text blocked even when the model is cold or unavailable.
type Boost struct {
	High     float64
	Moderate float64
}

func DefaultBoost() Boost {
	return Boost{High: 0.25, Moderate: 0.15}
}

// severeTerms is a small curated list, separate from the heuristic
// tiers (overlap is fine). Matched as substrings of the
// tight-normalized text to catch obfuscated or embedded terms.
var severeTerms = []string{
	"madarchod", "bhenchod", "chutiya", "motherfucker", "fucking", "fuck",
	"bastard", "asshole", "kill yourself", "nigger", "faggot", "retard",
	"cunt", "whore", "slut", "rape", "bitch", "gandu", "harami",
	"bhosdike", "randi",
	"मादरचोद", "चूतिया", "गांडू", "हरामी",
}

// Combiner owns the classifier-path verdict. Stateless besides its
// collaborators; safe for concurrent use.
type Combiner struct {
	gateway    *classifier.Gateway
	thresholds Thresholds
	boost      Boost
	terms      []string
	log        *slog.Logger
}

func NewCombiner(gateway *classifier.Gateway, thresholds Thresholds, boost Boost, log *slog.Logger) *Combiner {
	terms := make([]string, 0, len(severeTerms))
	for _, term := range severeTerms {
		if tight := normalize.Tight(term); tight != "" {
			terms = append(terms, tight)
		}
	}
	return &Combiner{
		gateway:    gateway,
		thresholds: thresholds,
		boost:      boost,
		terms:      terms,
		log:        log,
	}
}

// Decide maps classifier labels onto two channels, applies the lexicon
// boost and thresholds the raw values. The returned score triple is
// normalized to sum to 1 for audit only; the allow decision uses the
// raw pre-normalization channels.
func (c *Combiner) Decide(ctx context.Context, text string) domain.ModerationVerdict {
	tight := normalize.Tight(text)

	boostHigh, boostModerate := 0.0, 0.0
	if c.severeMatch(tight) {
		boostHigh = c.boost.High
		boostModerate = c.boost.Moderate
	}

	// The model sees the folded text, so obfuscated tokens ("f.u.c.k",
	// "1diot") hash to the same features as their plain forms.
	scores := classifier.FromList(c.gateway.Classify(ctx, normalize.Fold(text)))

	high := max3(scores.SevereToxic, scores.Threat, scores.IdentityHate) + boostHigh
	moderate := max3(scores.Toxic, scores.Obscene, scores.Insult) + boostModerate

	verdict := domain.ModerationVerdict{Severity: domain.SeverityNormal, Allow: true}
	switch {
	case high >= c.thresholds.High:
		verdict.Severity = domain.SeverityHigh
		verdict.Allow = false
	case moderate >= c.thresholds.Moderate:
		verdict.Severity = domain.SeverityModerate
		verdict.Allow = false
	}

	verdict.Scores = auditScores(high, moderate)
	return verdict
}

func (c *Combiner) severeMatch(tight string) bool {
	for _, term := range c.terms {
		if strings.Contains(tight, term) {
			return true
		}
	}
	return false
}

// auditScores synthesizes a probability-like triple that sums to 1.
func auditScores(high, moderate float64) domain.VerdictScores {
	clampedHigh := math.Min(high, 1)
	clampedModerate := math.Min(moderate, 1)
	normal := math.Max(0, 1-math.Max(clampedHigh, clampedModerate))

	sum := normal + clampedModerate + clampedHigh
	if sum == 0 {
		return domain.VerdictScores{Normal: 1}
	}
	return domain.VerdictScores{
		Normal:   normal / sum,
		Moderate: clampedModerate / sum,
		High:     clampedHigh / sum,
	}
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
