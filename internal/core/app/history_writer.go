package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"styledetect/internal/core/ports"
	"styledetect/internal/data/queue"
	"styledetect/internal/shared/observability"
)

const (
	historyQueueCapacity = 64
	historyBatchSize     = 8
	historyBatchWait     = 500 * time.Millisecond
)

// historyWriter drains run records into the history store off the watch
// callback path.
type historyWriter struct {
	queue ports.RunQueue
	store ports.HistoryStore
	done  chan struct{}
}

func startHistoryWriter(store ports.HistoryStore) *historyWriter {
	w := &historyWriter{
		queue: queue.NewMemoryQueue(historyQueueCapacity),
		store: store,
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *historyWriter) enqueue(rec ports.RunRecord) {
	result := w.queue.Enqueue(rec)
	observability.HistoryWritesTotal.WithLabelValues(result.String()).Inc()
	observability.HistoryQueueDepth.Set(float64(w.queue.Len()))
	if result == ports.EnqueueDropped {
		slog.Warn("history queue full; run dropped", "run_id", rec.Run.ID)
	}
}

func (w *historyWriter) run() {
	defer close(w.done)
	for {
		batch, err := w.queue.DequeueBatch(context.Background(), historyBatchSize, historyBatchWait)
		for _, rec := range batch {
			if saveErr := w.store.SaveRun(rec.Run, rec.Matches); saveErr != nil {
				observability.HistoryWritesTotal.WithLabelValues("failed").Inc()
				slog.Warn("failed to persist watch history", "run_id", rec.Run.ID, "error", saveErr)
			}
		}
		observability.HistoryQueueDepth.Set(float64(w.queue.Len()))
		if errors.Is(err, io.EOF) {
			return
		}
	}
}

// close stops accepting records and waits until the queued ones are written.
func (w *historyWriter) close() {
	_ = w.queue.Close()
	<-w.done
}
