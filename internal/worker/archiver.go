package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"trail-orchestrator/internal/domain"
)

const (
	defaultQueueSize = 256
	recordTimeout    = 10 * time.Second
	initialBackoff   = 1 * time.Second
	maxBackoff       = 1 * time.Minute
)

// Archiver drains completed turns into the archive asynchronously. Enqueue
// never blocks: when the queue is full the turn is dropped and counted,
// because losing a trace row must never stall a chat response.
type Archiver struct {
	archive domain.TurnArchive
	logger  *slog.Logger

	queue    chan domain.TurnRecord
	stopChan chan struct{}
	done     chan struct{}

	backoff time.Duration
	dropped atomic.Int64
}

func NewArchiver(archive domain.TurnArchive, queueSize int, logger *slog.Logger) *Archiver {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Archiver{
		archive:  archive,
		logger:   logger,
		queue:    make(chan domain.TurnRecord, queueSize),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (a *Archiver) Start() {
	a.logger.Info("Starting turn archiver")
	go a.run()
}

// Stop shuts the archiver down after draining whatever is queued.
func (a *Archiver) Stop() {
	a.logger.Info("Stopping turn archiver")
	close(a.stopChan)
	<-a.done
}

// Enqueue hands off a completed turn. Non-blocking by contract.
func (a *Archiver) Enqueue(turn domain.TurnRecord) {
	select {
	case a.queue <- turn:
	default:
		a.logger.Warn("Archive queue full, dropping turn",
			"turn_id", turn.ID,
			"dropped_total", a.dropped.Add(1))
	}
}

func (a *Archiver) run() {
	defer close(a.done)

	for {
		select {
		case turn := <-a.queue:
			a.record(turn)
		case <-a.stopChan:
			a.drain()
			return
		}
	}
}

// drain flushes queued turns after Stop. New turns can still race in while
// draining; anything arriving after the queue reads empty is lost.
func (a *Archiver) drain() {
	for {
		select {
		case turn := <-a.queue:
			a.record(turn)
		default:
			return
		}
	}
}

func (a *Archiver) record(turn domain.TurnRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := a.archive.Record(ctx, &turn); err != nil {
		a.backoff = a.nextBackoff(a.backoff)
		a.logger.Error("Failed to archive turn, backing off",
			"turn_id", turn.ID,
			"backoff", a.backoff,
			"error", err)
		select {
		case <-time.After(a.backoff):
		case <-a.stopChan:
		}
		return
	}
	a.backoff = 0
}

func (a *Archiver) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

var _ domain.TurnSink = (*Archiver)(nil)
