package sink

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"trust-lab/domain"
)

type recordingRepository struct {
	mu      sync.Mutex
	batches [][]domain.ContactMessage
}

func (r *recordingRepository) StoreBatch(messages []domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, messages)
	return nil
}

func (r *recordingRepository) ListRecent(int) ([]domain.ContactMessage, error) {
	return nil, nil
}

func (r *recordingRepository) stored() [][]domain.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]domain.ContactMessage(nil), r.batches...)
}

func message(text string) domain.ContactMessage {
	return domain.ContactMessage{ID: uuid.New(), Identity: "Reader", Message: text, CreatedAt: time.Now().UTC()}
}

func Test_Sink_Flushes_On_Size_Threshold(t *testing.T) {
	req := require.New(t)
	repository := &recordingRepository{}
	s := NewContactSink(repository, slog.New(slog.DiscardHandler), 3, time.Hour)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, message("one")))
	req.NoError(s.Consume(ctx, message("two")))
	req.Empty(repository.stored())

	req.NoError(s.Consume(ctx, message("three")))
	batches := repository.stored()
	req.Len(batches, 1)
	req.Len(batches[0], 3)
	req.Zero(s.Buffered())
}

func Test_Sink_Flushes_On_Timeout(t *testing.T) {
	req := require.New(t)
	repository := &recordingRepository{}
	s := NewContactSink(repository, slog.New(slog.DiscardHandler), 100, 20*time.Millisecond)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, message("slow day")))

	req.Eventually(func() bool {
		batches := repository.stored()
		return len(batches) == 1 && len(batches[0]) == 1
	}, time.Second, 5*time.Millisecond)
}

func Test_Sink_Manual_Flush_Drains_Buffer(t *testing.T) {
	req := require.New(t)
	repository := &recordingRepository{}
	s := NewContactSink(repository, slog.New(slog.DiscardHandler), 100, time.Hour)
	ctx := context.Background()

	req.NoError(s.Consume(ctx, message("one")))
	req.NoError(s.Consume(ctx, message("two")))
	req.Equal(2, s.Buffered())

	req.NoError(s.Flush(ctx))
	batches := repository.stored()
	req.Len(batches, 1)
	req.Len(batches[0], 2)

	// A second flush on an empty buffer is a no-op.
	req.NoError(s.Flush(ctx))
	req.Len(repository.stored(), 1)
}
