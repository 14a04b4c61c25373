package executor

import "errors"

// Waker is the capability to resubmit a suspended task.
//
// The executor mints a fresh Waker for every poll. A computation that
// suspends clones it into whatever will signal progress (a Suspension, a
// Timer, ...). All clones share the same task; the task lives as long as the
// longest holder.
//
// Wake is safe from any goroutine, any number of times, including after the
// task completed (a no-op then).
type Waker struct {
	task *task
}

// Wake resubmits the task to the ready queue.
//
// Waking a task that is complete or already queued does nothing. Waking
// after the executor stopped does nothing. Waking against a full queue
// panics with a *QueueFullError: the queue was sized too small.
func (w *Waker) Wake() {
	if w == nil || w.task == nil {
		return
	}
	t := w.task
	err := t.schedule()
	if err == nil || errors.Is(err, ErrExecutorStopped) {
		return
	}
	if errors.Is(err, ErrQueueFull) {
		panic(&QueueFullError{Task: t.id, Name: t.name, Capacity: t.exec.q.cap(), Wake: true})
	}
	panic(err)
}

// Clone returns another handle to the same task.
func (w *Waker) Clone() *Waker {
	if w == nil {
		return nil
	}
	return &Waker{task: w.task}
}

// WillWake reports whether w and other wake the same task.
func (w *Waker) WillWake(other *Waker) bool {
	return w != nil && other != nil && w.task == other.task
}

// TaskID returns the id of the task w wakes (0 for a nil Waker).
func (w *Waker) TaskID() TaskID {
	if w == nil || w.task == nil {
		return 0
	}
	return w.task.id
}
