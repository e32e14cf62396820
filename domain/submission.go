// Package domain contains core concepts of the content-trust engine.
// This file defines Submission inputs and related rules.
// Submissions are immutable and consumed once per request.
package domain

import "strings"

// Submission is one anonymous user contribution, built once per HTTP
// request and never mutated afterwards.
type Submission struct {
	PostSlug       string
	DisplayName    string
	Body           string
	ContactAddress string
	Fingerprint    string
	Metrics        *BehavioralMetrics
	NetworkID      string
}

// BehavioralMetrics is client-observed typing telemetry. It is advisory
// only and never trusted as ground truth. Absent telemetry (a nil
// pointer) is risk-neutral: behavioral categories simply do not fire.
type BehavioralMetrics struct {
	TypingDurationMs  int `json:"typing_duration_ms"`
	TotalKeystrokes   int `json:"total_keystrokes"`
	BackspaceCount    int `json:"backspace_count"`
	PasteCount        int `json:"paste_count"`
	PointerEventCount int `json:"pointer_event_count"`
	FocusEventCount   int `json:"focus_event_count"`
}

// UnknownIdentity is the sentinel returned when no client address could
// be extracted. The persistent rate-limit layer must never be queried
// with it.
const UnknownIdentity = "unknown"

// Identity picks the rate-limit key for a submission: the network
// address when available, otherwise the client fingerprint.
func (s Submission) Identity() string {
	if s.NetworkID != "" && s.NetworkID != UnknownIdentity {
		return s.NetworkID
	}
	if strings.TrimSpace(s.Fingerprint) != "" {
		return s.Fingerprint
	}
	return UnknownIdentity
}
