package observability

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Counters_And_Snapshot(t *testing.T) {
	req := require.New(t)
	stats := NewPipelineStats(slog.New(slog.DiscardHandler))

	stats.IncrAccepted()
	stats.IncrAccepted()
	stats.IncrShadowBanned()
	stats.IncrDiscarded()
	stats.IncrRateLimited()
	stats.IncrContactAccepted()

	snap := stats.Snapshot("ready", 3)
	req.Equal(uint64(2), snap.Accepted)
	req.Equal(uint64(1), snap.ShadowBanned)
	req.Equal(uint64(1), snap.Discarded)
	req.Equal(uint64(1), snap.RateLimited)
	req.Equal(uint64(1), snap.ContactAccepted)
	req.Equal("ready", snap.ClassifierState)
	req.Equal(3, snap.LocalLimitEntries)
}

func Test_Recent_Decisions_Capped_Newest_First(t *testing.T) {
	req := require.New(t)
	stats := NewPipelineStats(slog.New(slog.DiscardHandler))

	for i := 0; i < 25; i++ {
		stats.RecordDecision(fmt.Sprintf("post-%d", i), "allow", i, "normal")
	}

	snap := stats.Snapshot("ready", 0)
	req.Len(snap.RecentDecisions, maxRecentDecisions)
	req.Equal("post-24", snap.RecentDecisions[0].PostSlug)
	req.Equal("post-5", snap.RecentDecisions[len(snap.RecentDecisions)-1].PostSlug)
}

func Test_Concurrent_Updates(t *testing.T) {
	stats := NewPipelineStats(slog.New(slog.DiscardHandler))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			stats.IncrAccepted()
			stats.RecordDecision("post", "allow", n, "normal")
		}(i)
	}
	wg.Wait()

	snap := stats.Snapshot("ready", 0)
	require.Equal(t, uint64(40), snap.Accepted)
	require.Len(t, snap.RecentDecisions, maxRecentDecisions)
}
