package executor

import (
	"errors"
	"fmt"
)

var (
	ErrQueueFull       = errors.New("executor ready queue full")
	ErrSpawnerClosed   = errors.New("spawner closed")
	ErrExecutorStopped = errors.New("executor stopped")
	ErrNilComputation  = errors.New("computation is nil")
	ErrAlreadyRunning  = errors.New("executor run loop already active")
)

// QueueFullError describes a send that would have exceeded the ready queue's
// fixed capacity. It unwraps to ErrQueueFull.
//
// This is a sizing error: the queue capacity given to New was too small for
// the workload. Nothing retries it.
type QueueFullError struct {
	Task     TaskID
	Name     string
	Capacity int
	Wake     bool // true when raised by Waker.Wake rather than a spawn
}

func (e *QueueFullError) Error() string {
	op := "spawn"
	if e.Wake {
		op = "wake"
	}
	return fmt.Sprintf("%s task %d (%s): %v (capacity %d)", op, e.Task, e.Name, ErrQueueFull, e.Capacity)
}

func (e *QueueFullError) Unwrap() error { return ErrQueueFull }
