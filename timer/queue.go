package timer

import (
	"context"
	"sync"
)

// opQueue runs blocking operations one at a time, in the order they were
// queued, on a single worker goroutine. The ticker never waits on it.
type opQueue struct {
	wake   chan struct{}
	done   chan struct{}
	items  []func(context.Context)
	mu     sync.Mutex
	closed bool
}

func newOpQueue() *opQueue {
	q := &opQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	go q.work(context.Background())

	return q
}

// push queues op. It reports false once the queue is closed.
func (q *opQueue) push(op func(context.Context)) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.items = append(q.items, op)

	select {
	case q.wake <- struct{}{}:
	default:
	}

	return true
}

// drain stops accepting operations and waits for the queued ones to finish.
func (q *opQueue) drain() {
	q.mu.Lock()

	if !q.closed {
		q.closed = true
		close(q.wake)
	}

	q.mu.Unlock()

	<-q.done
}

func (q *opQueue) work(ctx context.Context) {
	defer close(q.done)

	for {
		q.mu.Lock()

		if len(q.items) == 0 {
			closed := q.closed
			q.mu.Unlock()

			if closed {
				return
			}

			<-q.wake

			continue
		}

		op := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]

		q.mu.Unlock()

		op(ctx)
	}
}
