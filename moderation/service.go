// Package moderation fuses the rate limiter, the heuristic scorer and
// the classifier-backed combiner into one decision per submission.
package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"trust-lab/decision"
	"trust-lab/domain"
	"trust-lab/heuristics"
	"trust-lab/observability"
	"trust-lab/repositories"
)

// RateGate is the limiter's contribution to the pipeline.
type RateGate interface {
	IsLimited(ctx context.Context, identity string) bool
}

// ContactDelivery receives accepted contact messages.
type ContactDelivery interface {
	Consume(ctx context.Context, message domain.ContactMessage) error
}

type Service struct {
	gate     RateGate
	scorer   *heuristics.Scorer
	combiner *decision.Combiner
	comments repositories.ICommentRepository
	contacts ContactDelivery
	stats    *observability.PipelineStats
	ttl      time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewService(
	gate RateGate,
	scorer *heuristics.Scorer,
	combiner *decision.Combiner,
	comments repositories.ICommentRepository,
	contacts ContactDelivery,
	stats *observability.PipelineStats,
	ttl time.Duration,
	log *slog.Logger,
) *Service {
	if ttl <= 0 {
		ttl = repositories.DefaultTTL
	}
	return &Service{
		gate:     gate,
		scorer:   scorer,
		combiner: combiner,
		comments: comments,
		contacts: contacts,
		stats:    stats,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// Evaluate runs the full pipeline without persisting anything. Rate
// limiting short-circuits everything else: a limited client learns
// nothing about how its text would have scored.
func (s *Service) Evaluate(ctx context.Context, submission domain.Submission) domain.Outcome {
	if s.gate != nil && s.gate.IsLimited(ctx, submission.Identity()) {
		return domain.Outcome{RateLimited: true}
	}
	return s.judge(ctx, submission)
}

// Advise runs both scoring paths and skips the rate limiter. Nothing
// is persisted or counted; this backs the operator-facing dry run.
func (s *Service) Advise(ctx context.Context, submission domain.Submission) domain.Outcome {
	return s.judge(ctx, submission)
}

// judge fuses the two scoring paths. The heuristic verdict and the
// classifier verdict each can only tighten the outcome, never loosen
// the other's.
func (s *Service) judge(ctx context.Context, submission domain.Submission) domain.Outcome {
	risk := s.scorer.Score(submission.Body, submission.DisplayName, submission.Metrics)
	verdict := s.combiner.Decide(ctx, submission.Body)

	outcome := domain.Outcome{Risk: risk, Verdict: verdict}
	switch {
	case !risk.Approved || verdict.Severity == domain.SeverityHigh:
		// Only the hard signals discard: heuristic hard reject or a
		// high-severity verdict.
		outcome.Discard = true
	case risk.ShadowBan || !verdict.Allow:
		// A moderate disallow is demoted to shadow-ban, never discard.
		outcome.Allow = true
		outcome.ShadowBan = true
	default:
		outcome.Allow = true
	}
	return outcome
}

// SubmitComment moderates and, unless discarded or limited, persists a
// comment. Discarded submissions leave no trace in the store; shadow
// banned ones are persisted with the hidden status.
func (s *Service) SubmitComment(ctx context.Context, submission domain.Submission) (domain.Outcome, domain.Comment, error) {
	outcome := s.Evaluate(ctx, submission)

	if outcome.RateLimited {
		s.stats.IncrRateLimited()
		return outcome, domain.Comment{}, nil
	}
	if outcome.Discard {
		s.stats.IncrDiscarded()
		s.stats.RecordDecision(submission.PostSlug, "discard", outcome.Risk.RiskScore, string(outcome.Verdict.Severity))
		s.log.Info("submission discarded",
			"component", "moderation",
			"post", submission.PostSlug,
			"risk_score", outcome.Risk.RiskScore,
			"severity", outcome.Verdict.Severity,
			"reasons", outcome.Risk.Reasons)
		return outcome, domain.Comment{}, nil
	}

	status := domain.StatusActive
	if outcome.ShadowBan {
		status = domain.StatusShadowBanned
	}
	now := s.now().UTC()
	comment := domain.Comment{
		ID:             uuid.New(),
		PostSlug:       submission.PostSlug,
		Name:           submission.DisplayName,
		Message:        submission.Body,
		Status:         status,
		RiskScore:      outcome.Risk.RiskScore,
		Reasons:        outcome.Risk.Reasons,
		IdentityDigest: domain.DigestIdentity(submission.Identity()),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}
	if err := s.comments.StoreComment(comment); err != nil {
		return outcome, domain.Comment{}, err
	}

	if outcome.ShadowBan {
		s.stats.IncrShadowBanned()
		s.stats.RecordDecision(submission.PostSlug, "shadow_ban", outcome.Risk.RiskScore, string(outcome.Verdict.Severity))
	} else {
		s.stats.IncrAccepted()
		s.stats.RecordDecision(submission.PostSlug, "allow", outcome.Risk.RiskScore, string(outcome.Verdict.Severity))
	}
	return outcome, comment, nil
}

// SubmitContact moderates a contact-form message. Accepted messages go
// to the delivery sink; everything else is dropped without a word.
func (s *Service) SubmitContact(ctx context.Context, submission domain.Submission) (domain.Outcome, error) {
	outcome := s.Evaluate(ctx, submission)

	switch {
	case outcome.RateLimited:
		s.stats.IncrRateLimited()
		return outcome, nil
	case !outcome.Allow:
		s.stats.IncrDiscarded()
		s.log.Info("contact message discarded",
			"component", "moderation",
			"risk_score", outcome.Risk.RiskScore,
			"severity", outcome.Verdict.Severity)
		return outcome, nil
	}

	// The contact path has no shadow-ban state; a moderate verdict is
	// delivered anyway since nothing is published.
	message := domain.ContactMessage{
		ID:             uuid.New(),
		Identity:       submission.DisplayName,
		ReplyAddress:   submission.ContactAddress,
		Message:        submission.Body,
		IdentityDigest: domain.DigestIdentity(submission.Identity()),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.contacts.Consume(ctx, message); err != nil {
		return outcome, err
	}
	s.stats.IncrContactAccepted()
	return outcome, nil
}
