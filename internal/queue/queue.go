// Package queue implements the bounded in-memory FIFO queues that connect
// pipeline stages. The source system used OS-level multiprocessing queues;
// a buffered Go channel is the direct translation (see SPEC_FULL.md §1) and
// carries the same PoisonPill-based shutdown protocol.
package queue

import (
	"context"
	"time"
)

// ErrShutdown is returned by Put when the supplied stop flag is set before
// the item could be enqueued.
var ErrShutdown = errShutdown{}

type errShutdown struct{}

func (errShutdown) Error() string { return "queue: shutdown in progress" }

const putRetryInterval = 500 * time.Millisecond

// Queue is a bounded FIFO channel wrapper. Item is typically a pipeline
// message or a *models.PoisonPill.
type Queue[T any] struct {
	ch   chan T
	size int
}

// New creates a queue with the given capacity, shared across all producers
// feeding it (the capacity a camera's worker contends for is the full
// queue, not a per-camera share).
func New[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity), size: capacity}
}

// Cap returns the configured capacity.
func (q *Queue[T]) Cap() int { return q.size }

// Len returns the number of items currently buffered.
func (q *Queue[T]) Len() int { return len(q.ch) }

// Put blocks until the item is enqueued, the stop flag becomes true, or ctx
// is cancelled, retrying the enqueue attempt every 500ms as required by
// spec §4.1/§4.4/§4.5's enqueue policy. Returns ErrShutdown if stopped
// before the item was accepted.
func (q *Queue[T]) Put(ctx context.Context, item T, stopped func() bool) error {
	for {
		select {
		case q.ch <- item:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(putRetryInterval):
			if stopped() {
				return ErrShutdown
			}
		}
	}
}

// TryPut attempts a non-blocking enqueue, used by event writers queuing
// notifications: log-and-drop on a full queue rather than block.
func (q *Queue[T]) TryPut(item T) bool {
	select {
	case q.ch <- item:
		return true
	default:
		return false
	}
}

// Get blocks until an item is available or ctx is cancelled. Per spec §5,
// gets block indefinitely until an item or a PoisonPill arrives; ctx
// cancellation exists only to allow orderly process exit in tests.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T
	select {
	case item := <-q.ch:
		return item, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
