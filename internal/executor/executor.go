package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"pollrt/internal/eventbus"
	logx "pollrt/pkg/logx"
)

const (
	defaultHistorySize = 200
	pressureWarnEvery  = 5 * time.Second
)

// Executor is the run loop. It receives ready tasks from the queue and
// advances each by one poll, in the order the queue delivers them.
//
// There is no preemption: a computation that never suspends keeps every
// other task waiting. A computation that panics inside Poll takes the run
// loop down with it; tasks are not isolated from each other.
type Executor struct {
	q   *readyQueue
	log logx.Logger
	bus eventbus.Bus

	historySize int

	running atomic.Bool
	idSeq   atomic.Uint64

	spawned   atomic.Uint64
	completed atomic.Uint64
	polls     atomic.Uint64
	stale     atomic.Uint64
	dropped   atomic.Uint64

	hmu     sync.Mutex
	history []HistoryItem

	pressure rate.Sometimes
}

// Option configures an Executor at construction time.
type Option func(*Executor)

func WithLogger(log logx.Logger) Option {
	return func(e *Executor) { e.log = log }
}

// WithBus publishes task lifecycle events (see the Event* constants).
func WithBus(bus eventbus.Bus) Option {
	return func(e *Executor) { e.bus = bus }
}

// WithHistorySize bounds the completed-task history kept for Snapshot.
func WithHistorySize(n int) Option {
	return func(e *Executor) { e.historySize = n }
}

// New creates an executor and the first spawner for it.
//
// capacity fixes the ready queue size for the executor's lifetime; a spawn
// or wake that would exceed it is a sizing error, not backpressure.
// capacity <= 0 selects DefaultQueueSize.
func New(capacity int, opts ...Option) (*Executor, *Spawner) {
	if capacity <= 0 {
		capacity = DefaultQueueSize
	}
	e := &Executor{
		q:           newReadyQueue(capacity),
		historySize: defaultHistorySize,
		pressure:    rate.Sometimes{Interval: pressureWarnEvery},
	}
	for _, o := range opts {
		o(e)
	}
	if e.log.IsZero() {
		e.log = logx.Nop()
	}
	if e.historySize <= 0 {
		e.historySize = defaultHistorySize
	}
	return e, newSpawner(e)
}

// Run polls ready tasks until no producer can send again: every Spawner was
// closed, every spawned task completed and the queue is drained. That is the
// normal shutdown and Run returns nil.
//
// Tasks still suspended keep Run alive, because their wakers may requeue
// them. A task suspended with no Waker kept anywhere is released once the
// garbage collector finds it unreachable. Run must not be called from two
// goroutines at once.
func (e *Executor) Run() error {
	return e.RunContext(context.Background())
}

// RunContext is Run that also returns when ctx is done. In that case the
// queue is shut: later spawns fail with ErrExecutorStopped, later wakes are
// dropped and suspended tasks are never polled again.
func (e *Executor) RunContext(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	e.log.Info("executor started", logx.Int("queue_cap", e.q.cap()))
	start := time.Now()

	for {
		t, err := e.next(ctx)
		if err != nil {
			e.stopped(start, err)
			return err
		}
		if t == nil {
			e.stopped(start, nil)
			return nil
		}
		e.poll(t)
	}
}

// next blocks for the next ready task. It returns nil once the queue is
// closed and drained. The receive sits in its own frame so no stale
// reference to the previous task stays on the run loop's stack while it
// waits.
func (e *Executor) next(ctx context.Context) (*task, error) {
	select {
	case <-ctx.Done():
		e.q.shutdown()
		return nil, ctx.Err()
	case t := <-e.q.ch:
		return t, nil
	}
}

func (e *Executor) poll(t *task) {
	res, ok := t.advance()
	if !ok {
		e.stale.Add(1)
		return
	}
	e.polls.Add(1)

	if res == Pending {
		if e.log.Enabled(logx.LevelTrace) {
			e.log.Trace("task.suspended", logx.Uint64("task", uint64(t.id)), logx.String("name", t.name), logx.Uint64("polls", t.polls.Load()))
		}
		e.publish(EventTaskSuspended, t.event(0))
		return
	}

	t.abandon.Stop()
	now := time.Now()
	dur := now.Sub(t.spawned)
	ev := t.event(dur)
	e.completed.Add(1)
	e.record(HistoryItem{ID: t.id, Name: t.name, Spawned: t.spawned, Finished: now, Polls: ev.Polls, Duration: dur})
	e.log.Debug("task.completed", logx.Uint64("task", uint64(t.id)), logx.String("name", t.name), logx.Uint64("polls", ev.Polls), logx.Duration("dur", dur))
	e.publish(EventTaskCompleted, ev)

	// The completed task no longer counts as a producer. If it was the last
	// one the queue closes and the loop exits after draining.
	e.q.release()
}

// abandoned runs after a suspended task was garbage collected. Its waker
// was dropped, so it can never be polled again; it stops counting as a
// producer and Run may return.
func (e *Executor) abandoned() {
	e.dropped.Add(1)
	e.log.Warn("task abandoned: suspended without a reachable waker")
	e.q.release()
}

func (e *Executor) stopped(start time.Time, err error) {
	fields := []logx.Field{
		logx.Uint64("spawned", e.spawned.Load()),
		logx.Uint64("completed", e.completed.Load()),
		logx.Uint64("polls", e.polls.Load()),
		logx.Duration("uptime", time.Since(start)),
	}
	if err != nil {
		e.log.Warn("executor stopped early", append(fields, logx.Err(err))...)
	} else {
		e.log.Info("executor stopped", fields...)
	}
	e.publish(EventExecutorStopped, nil)
}

func (e *Executor) publish(typ string, data any) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventbus.Event{Type: typ, Time: time.Now(), Data: data})
}

func (e *Executor) record(item HistoryItem) {
	e.hmu.Lock()
	e.history = append(e.history, item)
	if len(e.history) > e.historySize {
		e.history = e.history[len(e.history)-e.historySize:]
	}
	e.hmu.Unlock()
}

// notePressure logs, at most every few seconds, when the queue is at least
// three quarters full.
func (e *Executor) notePressure() {
	n, c := e.q.len(), e.q.cap()
	if n*4 < c*3 {
		return
	}
	e.pressure.Do(func() {
		e.log.Warn("ready queue near capacity", logx.Int("queue_len", n), logx.Int("queue_cap", c))
	})
}

func (e *Executor) Snapshot() Snapshot {
	e.hmu.Lock()
	h := make([]HistoryItem, len(e.history))
	copy(h, e.history)
	e.hmu.Unlock()

	spawned := e.spawned.Load()
	completed := e.completed.Load()
	abandoned := e.dropped.Load()
	live := 0
	if spawned > completed+abandoned {
		live = int(spawned - completed - abandoned)
	}

	return Snapshot{
		Running:    e.running.Load(),
		QueueLen:   e.q.len(),
		QueueCap:   e.q.cap(),
		Spawned:    spawned,
		Completed:  completed,
		Polls:      e.polls.Load(),
		StalePolls: e.stale.Load(),
		Abandoned:  abandoned,
		Live:       live,
		History:    h,
	}
}
