// Package activity forwards viewport settle events to an external sink in
// batches, off the request path.
package activity

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/cat-map/internal/domain"
	"github.com/couchcryptid/cat-map/internal/observability"
)

// BatchLoader writes multiple viewport events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ViewportEvent) error
}

// Feed buffers settle events and flushes them to a BatchLoader when a batch
// fills up or the flush interval elapses. Enqueue never blocks: events that
// do not fit in the buffer are dropped and counted.
type Feed struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	events        chan domain.ViewportEvent
	batchSize     int
	flushInterval time.Duration
	ready         atomic.Bool
}

// New creates a Feed. The buffer holds four batches.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Feed {
	return &Feed{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		events:        make(chan domain.ViewportEvent, batchSize*4),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Enqueue offers an event to the feed. It is safe to use as a viewport.Listener.
func (f *Feed) Enqueue(ev domain.ViewportEvent) {
	select {
	case f.events <- ev:
	default:
		f.metrics.ActivityDropped.Inc()
		f.logger.Debug("activity buffer full, dropping event", "session", ev.Session, "kind", ev.Kind)
	}
}

// CheckReadiness returns nil once the feed has started.
func (f *Feed) CheckReadiness(_ context.Context) error {
	if !f.ready.Load() {
		return errors.New("activity feed is not running")
	}
	return nil
}

// Run flushes batches until the context is cancelled, then makes one
// best-effort attempt to flush what is still buffered.
func (f *Feed) Run(ctx context.Context) error {
	f.logger.Info("activity feed started", "batch_size", f.batchSize, "flush_interval", f.flushInterval)
	f.metrics.ActivityRunning.Set(1)
	f.ready.Store(true)
	defer func() {
		f.ready.Store(false)
		f.metrics.ActivityRunning.Set(0)
	}()

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	ticker := time.NewTicker(f.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ViewportEvent, 0, f.batchSize)
	for {
		select {
		case <-ctx.Done():
			f.logger.Info("activity feed stopping", "reason", ctx.Err())
			f.drain(batch)
			return nil
		case ev := <-f.events:
			batch = append(batch, ev)
			if len(batch) < f.batchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		if !f.flush(ctx, batch, &backoff, maxBackoff) {
			f.drain(batch)
			return nil
		}
		batch = batch[:0]
	}
}

// flush writes one batch, retrying with backoff until it succeeds or the
// context ends. Returns false if the feed should stop.
func (f *Feed) flush(ctx context.Context, batch []domain.ViewportEvent, backoff *time.Duration, maxBackoff time.Duration) bool {
	for {
		err := f.loader.LoadBatch(ctx, batch)
		if err == nil {
			f.metrics.ActivityPublished.Add(float64(len(batch)))
			*backoff = 200 * time.Millisecond
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		f.metrics.ActivityErrors.Inc()
		f.logger.Error("load activity batch failed", "error", err, "batch_size", len(batch))
		if !sleepWithContext(ctx, *backoff) {
			return false
		}
		*backoff = nextBackoff(*backoff, maxBackoff)
	}
}

// drain gives pending events one last chance on shutdown.
func (f *Feed) drain(batch []domain.ViewportEvent) {
pending:
	for {
		select {
		case ev := <-f.events:
			batch = append(batch, ev)
		default:
			break pending
		}
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.loader.LoadBatch(ctx, batch); err != nil {
		f.logger.Warn("final activity flush failed", "error", err, "batch_size", len(batch))
		return
	}
	f.metrics.ActivityPublished.Add(float64(len(batch)))
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
