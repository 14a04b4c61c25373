package executor

import "time"

// Timer is an awaitable that becomes ready after a duration.
//
// Each Timer owns one goroutine that sleeps for the duration and then
// completes the timer's Suspension. There is no pooling: many outstanding
// timers mean as many sleeping goroutines.
type Timer struct {
	s        *Suspension
	deadline time.Time
}

// NewTimer starts a timer that fires after d. The clock starts now, not at
// the first poll; wrap it in Lazy (or use Sleep) to start it when reached.
func NewTimer(d time.Duration) *Timer {
	t := &Timer{s: NewSuspension(), deadline: time.Now().Add(d)}
	go func() {
		time.Sleep(d)
		t.s.Complete()
	}()
	return t
}

// NewDeadline starts a timer that fires at the given wall-clock time.
func NewDeadline(at time.Time) *Timer {
	return NewTimer(time.Until(at))
}

func (t *Timer) Poll(w *Waker) Poll { return t.s.Poll(w) }

func (t *Timer) Deadline() time.Time { return t.deadline }

// Fired reports whether the timer's goroutine has completed it.
func (t *Timer) Fired() bool { return t.s.Done() }
