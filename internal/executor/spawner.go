package executor

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	logx "pollrt/pkg/logx"
)

// Spawner submits new computations to an executor.
//
// Spawners are cheap to Clone and safe for concurrent use. Each handle holds
// the queue open until it is closed; Close every handle (including clones)
// so that Run can return once the work is done.
type Spawner struct {
	e      *Executor
	closed atomic.Bool
}

func newSpawner(e *Executor) *Spawner {
	s := &Spawner{e: e}
	if !e.q.acquire() {
		s.closed.Store(true)
	}
	return s
}

// Clone returns a new handle on the same queue. Cloning a closed spawner
// returns a closed spawner.
func (s *Spawner) Clone() *Spawner {
	if s.closed.Load() {
		c := &Spawner{e: s.e}
		c.closed.Store(true)
		return c
	}
	return newSpawner(s.e)
}

// Close releases this handle. It is idempotent.
func (s *Spawner) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.e.q.release()
	}
}

// Spawn wraps c in a new task and queues it.
//
// It panics when the queue is full (a *QueueFullError), when s is closed or
// when c is nil. Use TrySpawn to get the error instead.
func (s *Spawner) Spawn(c Computation) TaskID {
	return s.SpawnNamed("", c)
}

// SpawnNamed is Spawn with a task name used in logs, events and history.
func (s *Spawner) SpawnNamed(name string, c Computation) TaskID {
	id, err := s.TrySpawn(name, c)
	if err != nil {
		panic(err)
	}
	return id
}

// TrySpawn is SpawnNamed returning the error instead of panicking.
// A full queue is reported as a *QueueFullError wrapping ErrQueueFull.
func (s *Spawner) TrySpawn(name string, c Computation) (TaskID, error) {
	if c == nil {
		return 0, ErrNilComputation
	}
	if s.closed.Load() {
		return 0, ErrSpawnerClosed
	}
	e := s.e
	if !e.q.acquire() {
		return 0, ErrExecutorStopped
	}

	id := TaskID(e.idSeq.Add(1))
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("task-%d", id)
	}
	t := &task{id: id, name: name, spawned: time.Now(), exec: e, comp: c}
	t.queued.Store(true)
	t.abandon = runtime.AddCleanup(t, (*Executor).abandoned, e)

	e.spawned.Add(1)
	if err := e.q.send(t); err != nil {
		t.abandon.Stop()
		e.spawned.Add(^uint64(0))
		e.q.release()
		if errors.Is(err, ErrQueueFull) {
			e.log.Error("spawn failed: ready queue full", logx.String("name", name), logx.Int("queue_cap", e.q.cap()))
			return 0, &QueueFullError{Task: id, Name: name, Capacity: e.q.cap()}
		}
		return 0, err
	}
	e.notePressure()

	e.log.Debug("task.spawned", logx.Uint64("task", uint64(id)), logx.String("name", name))
	e.publish(EventTaskSpawned, TaskEvent{ID: id, Name: name, Spawned: t.spawned})
	return id, nil
}
