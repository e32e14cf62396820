package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// RecentDecision is one pipeline verdict kept for the inspect UI.
type RecentDecision struct {
	PostSlug  string `json:"post_slug"`
	Outcome   string `json:"outcome"`
	RiskScore int    `json:"risk_score"`
	Severity  string `json:"severity"`
	Timestamp string `json:"timestamp"`
}

// PipelineSnapshot aggregates every counter for the stats endpoint.
type PipelineSnapshot struct {
	Accepted        uint64 `json:"accepted"`
	ShadowBanned    uint64 `json:"shadow_banned"`
	Discarded       uint64 `json:"discarded"`
	RateLimited     uint64 `json:"rate_limited"`
	ContactAccepted uint64 `json:"contact_accepted"`

	ClassifierState   string `json:"classifier_state"`
	LocalLimitEntries int    `json:"local_limit_entries"`

	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`

	RecentDecisions []RecentDecision `json:"recent_decisions"`
}

const maxRecentDecisions = 20

// PipelineStats tracks moderation outcomes with atomic counters. One
// instance is shared by the HTTP handlers and the inspect server.
type PipelineStats struct {
	log *slog.Logger

	accepted        atomic.Uint64
	shadowBanned    atomic.Uint64
	discarded       atomic.Uint64
	rateLimited     atomic.Uint64
	contactAccepted atomic.Uint64

	mu     sync.RWMutex
	recent []RecentDecision
}

func NewPipelineStats(log *slog.Logger) *PipelineStats {
	return &PipelineStats{log: log}
}

func (p *PipelineStats) IncrAccepted()        { p.accepted.Add(1) }
func (p *PipelineStats) IncrShadowBanned()    { p.shadowBanned.Add(1) }
func (p *PipelineStats) IncrDiscarded()       { p.discarded.Add(1) }
func (p *PipelineStats) IncrRateLimited()     { p.rateLimited.Add(1) }
func (p *PipelineStats) IncrContactAccepted() { p.contactAccepted.Add(1) }

// RecordDecision prepends one verdict to the recent list, keeping only
// the last few for the inspect UI.
func (p *PipelineStats) RecordDecision(postSlug, outcome string, riskScore int, severity string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	decision := RecentDecision{
		PostSlug:  postSlug,
		Outcome:   outcome,
		RiskScore: riskScore,
		Severity:  severity,
		Timestamp: time.Now().Format("15:04:05"),
	}
	p.recent = append([]RecentDecision{decision}, p.recent...)
	if len(p.recent) > maxRecentDecisions {
		p.recent = p.recent[:maxRecentDecisions]
	}
}

// Snapshot assembles the current counters. classifierState and
// localEntries come from the caller so this package does not depend on
// the pipeline packages.
func (p *PipelineStats) Snapshot(classifierState string, localEntries int) PipelineSnapshot {
	p.mu.RLock()
	recent := append([]RecentDecision(nil), p.recent...)
	p.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return PipelineSnapshot{
		Accepted:          p.accepted.Load(),
		ShadowBanned:      p.shadowBanned.Load(),
		Discarded:         p.discarded.Load(),
		RateLimited:       p.rateLimited.Load(),
		ContactAccepted:   p.contactAccepted.Load(),
		ClassifierState:   classifierState,
		LocalLimitEntries: localEntries,
		AllocMemMb:        m.Alloc / 1024 / 1024,
		NumGC:             m.NumGC,
		RecentDecisions:   recent,
	}
}
