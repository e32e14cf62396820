package domain

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus distinguishes visible comments from shadow-banned ones.
// Shadow-banned comments are persisted but excluded from every read
// path other clients can observe.
type CommentStatus string

const (
	StatusActive       CommentStatus = "active"
	StatusShadowBanned CommentStatus = "shadow_banned"
)

// Comment is a persisted, moderated submission.
type Comment struct {
	ID             uuid.UUID     `json:"id"`
	PostSlug       string        `json:"post_slug"`
	Name           string        `json:"name"`
	Message        string        `json:"message"`
	Status         CommentStatus `json:"status"`
	RiskScore      int           `json:"risk_score"`
	Reasons        []string      `json:"reasons,omitempty"`
	IdentityDigest string        `json:"identity_digest,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

// ContactMessage is a moderated contact-form submission routed to a
// delivery sink instead of the public comment feed.
type ContactMessage struct {
	ID             uuid.UUID `json:"id"`
	Identity       string    `json:"identity"`
	ReplyAddress   string    `json:"reply_address,omitempty"`
	Message        string    `json:"message"`
	IdentityDigest string    `json:"identity_digest,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
