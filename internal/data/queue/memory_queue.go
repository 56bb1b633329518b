// Package queue buffers history writes for the background writer.
package queue

import (
	"context"
	"io"
	"sync"
	"time"

	"styledetect/internal/core/ports"
)

var _ ports.RunQueue = (*MemoryQueue)(nil)

// MemoryQueue is a bounded FIFO of run records. Enqueue never blocks; a full
// queue drops the record.
type MemoryQueue struct {
	ch     chan ports.RunRecord
	mu     sync.RWMutex
	closed bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryQueue{ch: make(chan ports.RunRecord, capacity)}
}

func (q *MemoryQueue) Enqueue(rec ports.RunRecord) ports.EnqueueResult {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ports.EnqueueDropped
	}
	select {
	case q.ch <- rec:
		return ports.EnqueueAccepted
	default:
		return ports.EnqueueDropped
	}
}

func (q *MemoryQueue) DequeueBatch(ctx context.Context, maxItems int, wait time.Duration) ([]ports.RunRecord, error) {
	if maxItems <= 0 {
		maxItems = 1
	}
	batch := make([]ports.RunRecord, 0, maxItems)

	var timer <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		timer = t.C
	}

	select {
	case rec, ok := <-q.ch:
		if !ok {
			return nil, io.EOF
		}
		batch = append(batch, rec)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer:
		return nil, nil
	default:
		if wait <= 0 {
			return nil, nil
		}
		select {
		case rec, ok := <-q.ch:
			if !ok {
				return nil, io.EOF
			}
			batch = append(batch, rec)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer:
			return nil, nil
		}
	}

	for len(batch) < maxItems {
		select {
		case rec, ok := <-q.ch:
			if !ok {
				return batch, io.EOF
			}
			batch = append(batch, rec)
		default:
			return batch, nil
		}
	}

	return batch, nil
}

func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.ch)
	return nil
}

func (q *MemoryQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.ch)
}
