package event

import "sync"

// Queue is a thread-safe FIFO of pending requests.
//
// The queue is unbounded. A buffered signal channel of size one lets a
// blocking driver wait for work without polling; multiple enqueues coalesce
// into one signal.
type Queue struct {
	mu       sync.Mutex
	requests []Request
	closed   bool
	signal   chan struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		requests: make([]Request, 0, 8),
		signal:   make(chan struct{}, 1),
	}
}

// Enqueue appends r. Safe from any goroutine.
// Returns false if the queue is closed.
func (q *Queue) Enqueue(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.requests = append(q.requests, r)

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// Drain removes and returns every pending request in submission order.
// Returns nil when nothing is pending.
func (q *Queue) Drain() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.requests) == 0 {
		return nil
	}

	out := make([]Request, len(q.requests))
	copy(out, q.requests)
	q.requests = q.requests[:0]
	return out
}

// Wait returns a channel that signals when requests may be available.
// The channel is closed when the queue is closed.
func (q *Queue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the number of pending requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Close stops accepting requests and wakes waiters. Pending requests can
// still be drained. Closing twice is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
