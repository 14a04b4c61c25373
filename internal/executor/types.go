package executor

import "time"

// DefaultQueueSize is the ready queue capacity used when New is given a
// non-positive capacity.
const DefaultQueueSize = 10_000

// Poll is the result of advancing a Computation by one step.
type Poll uint8

const (
	// Pending means the computation returned control at a suspension point.
	// It must already have handed its Waker to whatever will wake it.
	Pending Poll = iota
	// Ready means the computation ran to completion.
	Ready
)

func (p Poll) String() string {
	switch p {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Computation is a resumable unit of work.
//
// Poll advances it one step and must not block. Returning Pending is only
// valid after w (or a clone of it) has been stored somewhere an event source
// will call Wake on it; otherwise the task is never polled again.
type Computation interface {
	Poll(w *Waker) Poll
}

// Func adapts a plain function to Computation.
type Func func(w *Waker) Poll

func (f Func) Poll(w *Waker) Poll { return f(w) }

// TaskID identifies a spawned task within one executor.
type TaskID uint64

// Event types published on the bus.
const (
	EventTaskSpawned     = "task.spawned"
	EventTaskSuspended   = "task.suspended"
	EventTaskCompleted   = "task.completed"
	EventExecutorStopped = "executor.stopped"
)

// TaskEvent is the payload of task lifecycle events.
type TaskEvent struct {
	ID       TaskID        `json:"id"`
	Name     string        `json:"name"`
	Spawned  time.Time     `json:"spawned"`
	Polls    uint64        `json:"polls"`
	Duration time.Duration `json:"duration"`
}

// HistoryItem records one completed task.
type HistoryItem struct {
	ID       TaskID
	Name     string
	Spawned  time.Time
	Finished time.Time
	Polls    uint64
	Duration time.Duration
}

// Snapshot is a lightweight view for diagnostics.
type Snapshot struct {
	Running  bool
	QueueLen int
	QueueCap int

	Spawned    uint64
	Completed  uint64
	Polls      uint64
	StalePolls uint64 // polls that found the slot already empty
	Abandoned  uint64 // suspended tasks collected with no waker left
	Live       int    // spawned tasks not yet complete

	History []HistoryItem
}
