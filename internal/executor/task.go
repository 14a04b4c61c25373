package executor

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// task is the scheduling unit: an exclusive slot holding the computation
// plus the way back onto the ready queue.
//
// The slot is nil once the computation completed, and while the run loop is
// advancing it. Only the goroutine that took the computation out of the slot
// may poll it, so at most one goroutine advances a task at a time.
type task struct {
	id      TaskID
	name    string
	spawned time.Time
	exec    *Executor

	// abandon releases the task's producer reference if the task becomes
	// unreachable while suspended: no Waker survives, so nothing can ever
	// queue it again.
	abandon runtime.Cleanup

	mu   sync.Mutex
	comp Computation

	// queued collapses wakes that arrive while the task already sits in the
	// ready queue. It is cleared before the slot is taken, so a wake racing a
	// poll always produces one more poll.
	queued atomic.Bool
	done   atomic.Bool
	polls  atomic.Uint64
}

// schedule puts t back on the ready queue unless it is complete or already
// queued.
func (t *task) schedule() error {
	if t.done.Load() {
		return nil
	}
	if !t.queued.CompareAndSwap(false, true) {
		return nil
	}
	if err := t.exec.q.send(t); err != nil {
		t.queued.Store(false)
		return err
	}
	t.exec.notePressure()
	return nil
}

// advance takes the computation out of the slot, polls it once outside the
// lock and puts it back if it suspended. ok is false when the slot was empty.
func (t *task) advance() (res Poll, ok bool) {
	t.queued.Store(false)

	t.mu.Lock()
	c := t.comp
	t.comp = nil
	t.mu.Unlock()

	if c == nil {
		return Ready, false
	}

	t.polls.Add(1)
	if c.Poll(&Waker{task: t}) == Ready {
		t.done.Store(true)
		return Ready, true
	}

	t.mu.Lock()
	t.comp = c
	t.mu.Unlock()
	return Pending, true
}

func (t *task) event(d time.Duration) TaskEvent {
	return TaskEvent{ID: t.id, Name: t.name, Spawned: t.spawned, Polls: t.polls.Load(), Duration: d}
}
