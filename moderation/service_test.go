package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trust-lab/classifier"
	"trust-lab/decision"
	"trust-lab/domain"
	"trust-lab/heuristics"
	"trust-lab/lexicon"
	"trust-lab/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeGate struct {
	limited bool
	calls   int
}

func (f *fakeGate) IsLimited(context.Context, string) bool {
	f.calls++
	return f.limited
}

type fakeComments struct {
	mu     sync.Mutex
	stored []domain.Comment
}

func (f *fakeComments) StoreComment(comment domain.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stored = append(f.stored, comment)
	return nil
}

func (f *fakeComments) GetComments(string, bool) ([]domain.Comment, error) { return nil, nil }
func (f *fakeComments) CountBySlug() (map[string]int, error)              { return nil, nil }
func (f *fakeComments) HasRecentSubmission(context.Context, string, time.Time) (bool, error) {
	return false, nil
}

type fakeContacts struct {
	delivered []domain.ContactMessage
}

func (f *fakeContacts) Consume(_ context.Context, message domain.ContactMessage) error {
	f.delivered = append(f.delivered, message)
	return nil
}

// quietGateway never produces classifier scores; both loaders fail so
// only the heuristic path is in play.
func quietGateway() *classifier.Gateway {
	failing := func() (*classifier.Model, error) { return nil, fmt.Errorf("induced") }
	return classifier.NewGateway(classifier.Config{Primary: failing, Fallback: failing}, testLogger())
}

func gatewayWithBias(label string, bias float64) *classifier.Gateway {
	w := classifier.WeightsFile{
		Name:     "fixed",
		Features: 16,
		Labels:   map[string]classifier.LabelHead{label: {Bias: bias}},
	}
	return classifier.NewGateway(classifier.Config{
		Primary: func() (*classifier.Model, error) { return classifier.NewModel(w) },
	}, testLogger())
}

type fixture struct {
	service  *Service
	gate     *fakeGate
	comments *fakeComments
	contacts *fakeContacts
	stats    *observability.PipelineStats
}

func newFixture(t *testing.T, gateway *classifier.Gateway, extra ...lexicon.PhraseList) *fixture {
	t.Helper()
	log := testLogger()
	matcher, err := lexicon.NewMatcher(log, extra...)
	require.NoError(t, err)
	scorer := heuristics.NewScorer(matcher, heuristics.DefaultWeights(), heuristics.DefaultThresholds(), heuristics.DefaultLowTrustTLDs(), log)
	combiner := decision.NewCombiner(gateway, decision.DefaultThresholds(), decision.DefaultBoost(), log)

	f := &fixture{
		gate:     &fakeGate{},
		comments: &fakeComments{},
		contacts: &fakeContacts{},
		stats:    observability.NewPipelineStats(log),
	}
	f.service = NewService(f.gate, scorer, combiner, f.comments, f.contacts, f.stats, 0, log)
	return f
}

func submission(body string) domain.Submission {
	return domain.Submission{
		PostSlug:    "go-generics",
		DisplayName: "Asha",
		Body:        body,
		NetworkID:   "203.0.113.7",
	}
}

func Test_Clean_Comment_Is_Published(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, quietGateway())

	outcome, comment, err := f.service.SubmitComment(context.Background(), submission("hello there, great post!"))
	req.NoError(err)
	req.True(outcome.Allow)
	req.False(outcome.ShadowBan)
	req.Zero(outcome.Risk.RiskScore)

	req.Len(f.comments.stored, 1)
	req.Equal(domain.StatusActive, comment.Status)
	req.Equal(domain.DigestIdentity("203.0.113.7"), comment.IdentityDigest)
	req.False(comment.ExpiresAt.IsZero())
	req.Equal(uint64(1), f.stats.Snapshot("", 0).Accepted)
}

func Test_Rate_Limited_Skips_Scoring_And_Storage(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, quietGateway())
	f.gate.limited = true

	outcome, _, err := f.service.SubmitComment(context.Background(), submission("kill yourself"))
	req.NoError(err)
	req.True(outcome.RateLimited)
	req.False(outcome.Allow)
	// A limited client gets no verdict details at all.
	req.Zero(outcome.Risk.RiskScore)
	req.Empty(outcome.Risk.Reasons)
	req.Empty(f.comments.stored)
	req.Equal(uint64(1), f.stats.Snapshot("", 0).RateLimited)
}

func Test_Hard_Block_Leaves_No_Trace(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, quietGateway())

	body := "kill yourself " + strings.Repeat("a", 120)
	outcome, _, err := f.service.SubmitComment(context.Background(), submission(body))
	req.NoError(err)
	req.True(outcome.Discard)
	req.False(outcome.Allow)
	req.Empty(f.comments.stored)
	req.Equal(uint64(1), f.stats.Snapshot("", 0).Discarded)
}

func Test_Heuristic_Shadow_Ban_Is_Persisted_Hidden(t *testing.T) {
	req := require.New(t)
	// Two invented high-tier phrases sum to 10: inside the shadow band.
	f := newFixture(t, quietGateway(), lexicon.PhraseList{
		Tier:    lexicon.TierHigh,
		Phrases: []string{"vrimkal", "quandrip"},
	})

	outcome, comment, err := f.service.SubmitComment(context.Background(), submission("vrimkal quandrip, otherwise a calm reply"))
	req.NoError(err)
	req.True(outcome.Allow)
	req.True(outcome.ShadowBan)
	req.Len(f.comments.stored, 1)
	req.Equal(domain.StatusShadowBanned, comment.Status)
	req.Equal(uint64(1), f.stats.Snapshot("", 0).ShadowBanned)
}

func Test_Classifier_High_Severity_Discards(t *testing.T) {
	req := require.New(t)
	// severe_toxic fixed at 0.5, above the 0.40 deny threshold, on text
	// the heuristics consider clean.
	f := newFixture(t, gatewayWithBias(classifier.LabelSevereToxic, 0))

	outcome, _, err := f.service.SubmitComment(context.Background(), submission("a perfectly pleasant sentence"))
	req.NoError(err)
	req.True(outcome.Discard)
	req.Empty(f.comments.stored)
}

func Test_Classifier_Moderate_Severity_Shadow_Bans(t *testing.T) {
	req := require.New(t)
	// toxic fixed at sigmoid(0.5) ~ 0.62, above the 0.60 moderate
	// threshold but allowed.
	f := newFixture(t, gatewayWithBias(classifier.LabelToxic, 0.5))

	outcome, comment, err := f.service.SubmitComment(context.Background(), submission("a perfectly pleasant sentence"))
	req.NoError(err)
	req.True(outcome.Allow)
	req.True(outcome.ShadowBan)
	req.Equal(domain.StatusShadowBanned, comment.Status)
}

func Test_Verdict_Severity_Maps_To_Outcome(t *testing.T) {
	// Only a high-severity verdict discards; a moderate disallow is
	// demoted to a shadow ban.
	cases := []struct {
		name      string
		gateway   *classifier.Gateway
		discard   bool
		shadowBan bool
	}{
		{"normal", gatewayWithBias(classifier.LabelToxic, -6), false, false},
		{"moderate", gatewayWithBias(classifier.LabelToxic, 0.5), false, true},
		{"high", gatewayWithBias(classifier.LabelSevereToxic, 0), true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			f := newFixture(t, tc.gateway)

			outcome := f.service.Evaluate(context.Background(), submission("a perfectly pleasant sentence"))
			req.Equal(tc.discard, outcome.Discard)
			req.Equal(tc.shadowBan, outcome.ShadowBan)
			req.Equal(!tc.discard, outcome.Allow)
		})
	}
}

func Test_Evaluate_Never_Persists(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, quietGateway())

	outcome := f.service.Evaluate(context.Background(), submission("hello there, great post!"))
	req.True(outcome.Allow)
	req.Empty(f.comments.stored)
	req.Zero(f.stats.Snapshot("", 0).Accepted)
}

func Test_Contact_Accepted_Reaches_Sink(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, quietGateway())

	sub := submission("I would love a follow-up on part two")
	sub.ContactAddress = "reader@example.com"
	outcome, err := f.service.SubmitContact(context.Background(), sub)
	req.NoError(err)
	req.True(outcome.Allow)
	req.Len(f.contacts.delivered, 1)
	req.Equal("reader@example.com", f.contacts.delivered[0].ReplyAddress)
	req.Equal(uint64(1), f.stats.Snapshot("", 0).ContactAccepted)
}

func Test_Contact_Hard_Block_Is_Silent(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, quietGateway())

	body := "kill yourself " + strings.Repeat("a", 120)
	outcome, err := f.service.SubmitContact(context.Background(), submission(body))
	req.NoError(err)
	req.False(outcome.Allow)
	req.Empty(f.contacts.delivered)
}

func Test_Contact_Moderate_Severity_Still_Delivered(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, gatewayWithBias(classifier.LabelToxic, 0.5))

	outcome, err := f.service.SubmitContact(context.Background(), submission("a perfectly pleasant sentence"))
	req.NoError(err)
	req.True(outcome.Allow)
	req.True(outcome.ShadowBan)
	// Nothing is published on the contact path, so delivery proceeds.
	req.Len(f.contacts.delivered, 1)
}
