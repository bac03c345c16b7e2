package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"trail-orchestrator/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchive struct {
	mu      sync.Mutex
	records []domain.TurnRecord
	err     error
}

func (s *stubArchive) Record(_ context.Context, turn *domain.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *turn)
	return nil
}

func (s *stubArchive) RecentBySession(context.Context, string, int) ([]domain.TurnRecord, error) {
	return nil, nil
}

func (s *stubArchive) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTurn() domain.TurnRecord {
	return domain.TurnRecord{
		ID:        uuid.New(),
		SessionID: "s1",
		Intent:    domain.IntentRecommend,
		UserText:  "hi",
		CreatedAt: time.Now(),
	}
}

func TestArchiver_RecordsEnqueuedTurns(t *testing.T) {
	archive := &stubArchive{}
	a := NewArchiver(archive, 8, testLogger())
	a.Start()

	a.Enqueue(newTurn())
	a.Enqueue(newTurn())

	assert.Eventually(t, func() bool { return archive.count() == 2 },
		2*time.Second, 10*time.Millisecond)
	a.Stop()
}

func TestArchiver_StopDrainsQueue(t *testing.T) {
	archive := &stubArchive{}
	a := NewArchiver(archive, 8, testLogger())

	// Enqueue before Start so everything sits in the queue.
	a.Enqueue(newTurn())
	a.Enqueue(newTurn())
	a.Enqueue(newTurn())

	a.Start()
	a.Stop()

	assert.Equal(t, 3, archive.count())
}

func TestArchiver_EnqueueNeverBlocksWhenFull(t *testing.T) {
	archive := &stubArchive{}
	a := NewArchiver(archive, 1, testLogger())
	// Not started: the queue fills and stays full.

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			a.Enqueue(newTurn())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func TestArchiver_ConcurrentEnqueueOnFullQueue(t *testing.T) {
	archive := &stubArchive{}
	a := NewArchiver(archive, 1, testLogger())
	// Not started: every goroutine races on the drop path.

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				a.Enqueue(newTurn())
			}
		}()
	}
	wg.Wait()

	// One turn fits the queue, the rest are counted as dropped.
	assert.Equal(t, int64(16*50-1), a.dropped.Load())
}

func TestArchiver_FailureDoesNotStopProcessing(t *testing.T) {
	archive := &stubArchive{err: errors.New("db down")}
	a := NewArchiver(archive, 8, testLogger())
	a.Start()

	a.Enqueue(newTurn())

	// Let the failing record set a backoff, then recover the archive.
	time.Sleep(50 * time.Millisecond)
	archive.mu.Lock()
	archive.err = nil
	archive.mu.Unlock()

	a.Enqueue(newTurn())

	assert.Eventually(t, func() bool { return archive.count() >= 1 },
		5*time.Second, 20*time.Millisecond)
	a.Stop()
}

func TestArchiver_DefaultQueueSize(t *testing.T) {
	a := NewArchiver(&stubArchive{}, 0, testLogger())
	require.Equal(t, defaultQueueSize, cap(a.queue))
}
