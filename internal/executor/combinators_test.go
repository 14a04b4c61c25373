package executor

import (
	"testing"
	"time"
)

func TestSequenceRunsStepsInOrder(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	c := Sequence(Do(rec.mark("a")), nil, Do(rec.mark("b")), Do(rec.mark("c")))
	if got := c.Poll(nil); got != Ready {
		t.Fatalf("Poll() = %v, want Ready", got)
	}
	if got := rec.list(); !equalMarks(got, []string{"a", "b", "c"}) {
		t.Fatalf("marks = %v, want [a b c]", got)
	}
}

func TestRepeat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		n     int
		stop  int // f returns nil from this index on; -1 never
		calls int
	}{
		{name: "fixed", n: 3, stop: -1, calls: 3},
		{name: "zero_runs_until_nil", n: 0, stop: 5, calls: 5},
		{name: "nil_ends_early", n: 10, stop: 2, calls: 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			calls := 0
			c := Repeat(tt.n, func(i int) Computation {
				if tt.stop >= 0 && i >= tt.stop {
					return nil
				}
				return Do(func() { calls++ })
			})
			if got := c.Poll(nil); got != Ready {
				t.Fatalf("Poll() = %v, want Ready", got)
			}
			if calls != tt.calls {
				t.Fatalf("calls = %d, want %d", calls, tt.calls)
			}
		})
	}
}

func TestRepeatSuspendsBetweenIterations(t *testing.T) {
	t.Parallel()
	e, s := New(4)
	rec := &recorder{}
	s.Spawn(Repeat(3, func(i int) Computation {
		return Sequence(Sleep(time.Millisecond), Do(rec.mark("tick")))
	}))
	s.Close()

	if err := waitRun(t, runAsync(e), 5*time.Second); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := rec.list(); len(got) != 3 {
		t.Fatalf("ticks = %d, want 3", len(got))
	}
	if got := e.Snapshot().Polls; got != 4 {
		t.Fatalf("Polls = %d, want 4", got)
	}
}

func TestLazyBuildsOnce(t *testing.T) {
	t.Parallel()
	builds := 0
	c := Lazy(func() Computation {
		builds++
		return nil
	})
	for i := 0; i < 3; i++ {
		if got := c.Poll(nil); got != Ready {
			t.Fatalf("Poll() = %v, want Ready", got)
		}
	}
	if builds != 1 {
		t.Fatalf("builds = %d, want 1", builds)
	}
}

func TestPollString(t *testing.T) {
	t.Parallel()
	if Pending.String() != "pending" || Ready.String() != "ready" {
		t.Fatalf("String() = %q/%q, want pending/ready", Pending.String(), Ready.String())
	}
}
