// Package executor is a small cooperative task executor.
//
// New returns an Executor and a Spawner sharing a bounded ready queue.
// Spawner.Spawn wraps a Computation in a task and queues it; Executor.Run
// pops tasks in FIFO order and polls each one step. A computation either
// completes (the task is dropped) or suspends after handing its Waker to an
// event source. When the event happens, the source calls Wake and the task
// is queued again.
//
// Suspension is the building block for event sources: the computation polls
// it, the source completes it, and both sides serialize on its mutex so no
// wake can be lost. Timer is the reference source; it sleeps on a goroutine
// of its own and then completes its Suspension.
//
//	exec, spawner := executor.New(100)
//	spawner.Spawn(executor.Sequence(
//		executor.Do(func() { fmt.Println("howdy!") }),
//		executor.Sleep(2*time.Second),
//		executor.Do(func() { fmt.Println("done!") }),
//	))
//	spawner.Close()
//	_ = exec.Run()
//
// Run returns once every Spawner is closed, every task has completed and
// the queue is empty. There is no task cancellation, no fairness beyond FIFO
// order and no I/O poller.
package executor
