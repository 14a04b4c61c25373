package sources

import (
	"fmt"

	"golang.org/x/time/rate"

	"pollrt/internal/executor"
)

// NewRateWait reserves one token from l and returns a timer that fires when
// the token becomes available. The reservation is kept, so the wait counts
// against the limiter even if the caller stops polling.
func NewRateWait(l *rate.Limiter) (*executor.Timer, error) {
	if l == nil {
		return executor.NewTimer(0), nil
	}
	r := l.Reserve()
	if !r.OK() {
		return nil, fmt.Errorf("rate wait: burst %d cannot satisfy a single token", l.Burst())
	}
	return executor.NewTimer(r.Delay()), nil
}

// RateWait is NewRateWait built at the first poll. A limiter that can never
// grant a token completes immediately.
func RateWait(l *rate.Limiter) executor.Computation {
	return executor.Lazy(func() executor.Computation {
		t, err := NewRateWait(l)
		if err != nil {
			return nil
		}
		return t
	})
}
