package executor

import "sync"

// Suspension couples one pending external event to the Waker of the
// computation waiting for it.
//
// The waiting computation calls Poll; the event source calls Complete. Both
// run under the same mutex, so a completion that lands between a
// computation's check and its registration is still seen: either Poll
// observes completed, or Complete observes the stored Waker.
type Suspension struct {
	mu        sync.Mutex
	completed bool
	waker     *Waker
}

func NewSuspension() *Suspension {
	return &Suspension{}
}

// Poll reports Ready once completed. Otherwise it stores w, replacing any
// earlier Waker, and reports Pending.
func (s *Suspension) Poll(w *Waker) Poll {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return Ready
	}
	if !s.waker.WillWake(w) {
		s.waker = w.Clone()
	}
	return Pending
}

// Complete marks the event as happened and wakes the stored Waker, if any.
// The flag never reverts; only the first call wakes. It reports whether this
// call performed the transition.
func (s *Suspension) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return false
	}
	s.completed = true
	if w := s.waker; w != nil {
		s.waker = nil
		w.Wake()
	}
	return true
}

// Done reports whether Complete has been called.
func (s *Suspension) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}
