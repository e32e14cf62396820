package sink

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"trust-lab/domain"
	"trust-lab/repositories"
)

// ContactSink buffers accepted contact messages and flushes them to the
// repository in batches. The flush is triggered either by reaching the
// size threshold or by a time-based deadline, so a quiet inbox still
// drains promptly.
type ContactSink struct {
	mu            sync.Mutex
	timer         *time.Timer
	messages      []domain.ContactMessage
	repository    repositories.IContactRepository
	log           *slog.Logger
	maxBuffered   int
	bufferTimeout time.Duration
}

const (
	DefaultMaxBuffered   = 16
	DefaultBufferTimeout = 5 * time.Second
)

func NewContactSink(repository repositories.IContactRepository, log *slog.Logger, maxBuffered int, bufferTimeout time.Duration) *ContactSink {
	if maxBuffered <= 0 {
		maxBuffered = DefaultMaxBuffered
	}
	if bufferTimeout <= 0 {
		bufferTimeout = DefaultBufferTimeout
	}
	return &ContactSink{
		repository:    repository,
		log:           log,
		maxBuffered:   maxBuffered,
		bufferTimeout: bufferTimeout,
	}
}

// Consume appends one message to the current batch. The first message
// of a batch arms a background timer so low-throughput periods are not
// stuck waiting for the size threshold.
func (s *ContactSink) Consume(ctx context.Context, message domain.ContactMessage) error {
	s.mu.Lock()
	s.messages = append(s.messages, message)

	if len(s.messages) == 1 && s.timer == nil {
		s.timer = time.AfterFunc(s.bufferTimeout, func() {
			if err := s.Flush(ctx); err != nil {
				s.log.Error("contact sink timeout flush failed", "error", err)
			}
		})
	}

	isFull := len(s.messages) >= s.maxBuffered
	s.mu.Unlock()

	if isFull {
		return s.Flush(ctx)
	}
	return nil
}

// Flush swaps the buffer out under the lock, then persists the batch
// without holding it. Safe to call concurrently and at shutdown.
func (s *ContactSink) Flush(_ context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if len(s.messages) == 0 {
		s.mu.Unlock()
		return nil
	}
	batch := s.messages
	s.messages = make([]domain.ContactMessage, 0, s.maxBuffered)
	s.mu.Unlock()

	if err := s.repository.StoreBatch(batch); err != nil {
		return fmt.Errorf("failed to store contact batch: %w", err)
	}
	s.log.Info("contact batch stored", "count", len(batch))
	return nil
}

// Buffered reports how many messages are waiting, for stats endpoints.
func (s *ContactSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}
