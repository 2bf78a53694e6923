package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/model"
)

const (
	FeedBatchSize    = 50
	FeedBatchTimeout = 200 * time.Millisecond
)

// BatchPublisher delivers feed events to subscribers.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, events []model.FeedEvent) error
}

// FeedWorker takes feed events off the request path: services enqueue
// without blocking and the worker publishes them in batches.
type FeedWorker struct {
	publisher BatchPublisher
	queue     chan model.FeedEvent
	log       zerolog.Logger
	done      chan struct{}
	startOnce sync.Once
}

// NewFeedWorker creates a FeedWorker with a bounded queue.
func NewFeedWorker(publisher BatchPublisher, queueSize int, log zerolog.Logger) *FeedWorker {
	if queueSize <= 0 {
		queueSize = FeedBatchSize
	}
	return &FeedWorker{
		publisher: publisher,
		queue:     make(chan model.FeedEvent, queueSize),
		log:       log.With().Str("component", "feed_worker").Logger(),
		done:      make(chan struct{}),
	}
}

// Enqueue schedules an event. When the queue is full the event is dropped;
// the feed is a notification channel, never the source of truth.
func (w *FeedWorker) Enqueue(ev model.FeedEvent) {
	select {
	case w.queue <- ev:
	default:
		w.log.Warn().
			Str("template_id", ev.TemplateID.String()).
			Str("type", string(ev.Type)).
			Msg("Feed queue full, dropping event")
	}
}

// Start runs the batching loop until ctx is cancelled, then flushes what is
// left. Call in a goroutine.
func (w *FeedWorker) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		defer close(w.done)
		w.run(ctx)
	})
}

// Done is closed once Start has returned.
func (w *FeedWorker) Done() <-chan struct{} {
	return w.done
}

func (w *FeedWorker) run(ctx context.Context) {
	w.log.Info().Msg("FeedWorker started")

	batch := make([]model.FeedEvent, 0, FeedBatchSize)
	ticker := time.NewTicker(FeedBatchTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining events...")
			for {
				select {
				case ev := <-w.queue:
					batch = append(batch, ev)
				default:
					w.flush(context.Background(), batch)
					return
				}
			}
		case ev := <-w.queue:
			batch = append(batch, ev)
			if len(batch) >= FeedBatchSize {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				w.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (w *FeedWorker) flush(ctx context.Context, batch []model.FeedEvent) {
	if len(batch) == 0 {
		return
	}
	if err := w.publisher.PublishBatch(ctx, batch); err != nil {
		w.log.Error().Err(err).Int("events", len(batch)).Msg("Feed publish failed")
	}
}
