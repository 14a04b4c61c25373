package executor

import "time"

// Do returns a Computation that calls f and completes.
func Do(f func()) Computation {
	return Func(func(*Waker) Poll {
		if f != nil {
			f()
		}
		return Ready
	})
}

// Lazy returns a Computation that builds its inner computation on the first
// poll. A nil result completes immediately.
func Lazy(f func() Computation) Computation {
	var c Computation
	built := false
	return Func(func(w *Waker) Poll {
		if !built {
			built = true
			c = f()
		}
		if c == nil {
			return Ready
		}
		return c.Poll(w)
	})
}

// Sleep suspends for d, measured from the first poll.
func Sleep(d time.Duration) Computation {
	return Lazy(func() Computation { return NewTimer(d) })
}

// Sequence runs steps in order. It suspends whenever the current step does
// and completes after the last one.
func Sequence(steps ...Computation) Computation {
	i := 0
	return Func(func(w *Waker) Poll {
		for i < len(steps) {
			if s := steps[i]; s != nil && s.Poll(w) == Pending {
				return Pending
			}
			i++
		}
		return Ready
	})
}

// Repeat runs f(0), f(1), ... to completion one after another, n times, or
// forever when n <= 0. A nil computation from f ends the repeat.
//
// Iterations that never suspend run back to back inside a single poll.
func Repeat(n int, f func(i int) Computation) Computation {
	i := 0
	var cur Computation
	return Func(func(w *Waker) Poll {
		for n <= 0 || i < n {
			if cur == nil {
				cur = f(i)
				if cur == nil {
					return Ready
				}
			}
			if cur.Poll(w) == Pending {
				return Pending
			}
			cur = nil
			i++
		}
		return Ready
	})
}

// Yield suspends once, after waking itself, so other ready tasks get a turn.
func Yield() Computation {
	yielded := false
	return Func(func(w *Waker) Poll {
		if yielded {
			return Ready
		}
		yielded = true
		w.Wake()
		return Pending
	})
}
