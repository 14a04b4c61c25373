package executor

import "sync"

// readyQueue is the bounded FIFO between producers (spawners and live tasks)
// and the single run loop.
//
// A live task counts as a producer because it may send itself again when
// woken. Once the last producer reference is released the channel is closed;
// tasks still buffered are delivered before the receiver sees the close.
type readyQueue struct {
	ch chan *task

	mu        sync.Mutex
	producers int
	closed    bool
}

func newReadyQueue(capacity int) *readyQueue {
	return &readyQueue{ch: make(chan *task, capacity)}
}

// acquire adds a producer reference. It fails once the queue is closed.
func (q *readyQueue) acquire() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.producers++
	return true
}

// release drops a producer reference and closes the channel on the last one.
func (q *readyQueue) release() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.producers > 0 {
		q.producers--
	}
	if q.producers == 0 && !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// shutdown closes the queue regardless of outstanding producers.
func (q *readyQueue) shutdown() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// send enqueues t without blocking. Sends and close share q.mu, so a send
// never races the close.
func (q *readyQueue) send(t *task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrExecutorStopped
	}
	select {
	case q.ch <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *readyQueue) len() int { return len(q.ch) }
func (q *readyQueue) cap() int { return cap(q.ch) }
