// Package jobs turns configured job definitions into executor computations.
package jobs

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"pollrt/internal/config"
	"pollrt/internal/executor"
	"pollrt/internal/sources"
	logx "pollrt/pkg/logx"
)

var (
	ErrUnknownStep = errors.New("unknown step")
	ErrNoLimiter   = errors.New("rate step requires rate.per_sec")
	ErrNoSteps     = errors.New("job has no steps")
)

// Builder compiles job definitions. Limiter backs the "rate" step and may be
// nil when no job uses it.
type Builder struct {
	Log     logx.Logger
	Limiter *rate.Limiter
}

// step makes a fresh computation per run; computations are single use.
type step func() executor.Computation

// Build validates every step of j and returns the job's computation.
func (b Builder) Build(j config.JobConfig) (executor.Computation, error) {
	name := strings.TrimSpace(j.Name)
	if len(j.Steps) == 0 {
		return nil, fmt.Errorf("job %q: %w", name, ErrNoSteps)
	}
	log := b.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("job", name))

	steps := make([]step, 0, len(j.Steps))
	for i, raw := range j.Steps {
		s, err := b.parseStep(log, raw)
		if err != nil {
			return nil, fmt.Errorf("job %q step %d: %w", name, i, err)
		}
		steps = append(steps, s)
	}

	once := func(int) executor.Computation {
		cs := make([]executor.Computation, len(steps))
		for i, s := range steps {
			cs[i] = s()
		}
		return executor.Sequence(cs...)
	}

	switch {
	case j.Repeat < 0:
		return executor.Repeat(0, once), nil
	case j.Repeat > 1:
		return executor.Repeat(j.Repeat, once), nil
	default:
		return once(0), nil
	}
}

// Check builds every job and reports the first error.
func (b Builder) Check(jobs []config.JobConfig) error {
	for _, j := range jobs {
		if _, err := b.Build(j); err != nil {
			return err
		}
	}
	return nil
}

func (b Builder) parseStep(log logx.Logger, raw string) (step, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(raw), ":")
	kind = strings.ToLower(strings.TrimSpace(kind))
	arg = strings.TrimSpace(arg)

	switch kind {
	case "log":
		return func() executor.Computation {
			return executor.Do(func() { log.Info(arg) })
		}, nil

	case "sleep":
		d, err := config.ParseDurationField("sleep", arg)
		if err != nil {
			return nil, err
		}
		return func() executor.Computation { return executor.Sleep(d) }, nil

	case "at":
		spec, err := sources.ParseSchedule(arg)
		if err != nil {
			return nil, err
		}
		return func() executor.Computation { return sources.At(spec) }, nil

	case "file":
		if arg == "" {
			return nil, errors.New("file step requires a path")
		}
		return func() executor.Computation { return fileStep(log, arg) }, nil

	case "rate":
		if b.Limiter == nil {
			return nil, ErrNoLimiter
		}
		l := b.Limiter
		return func() executor.Computation { return sources.RateWait(l) }, nil

	case "yield":
		return executor.Yield, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownStep, raw)
}

// fileStep waits for path to change, then releases the watcher. A watch that
// cannot be started is logged and skipped.
func fileStep(log logx.Logger, path string) executor.Computation {
	return executor.Lazy(func() executor.Computation {
		fc, err := sources.NewFileChange(path)
		if err != nil {
			log.Warn("file watch failed", logx.String("path", path), logx.Err(err))
			return nil
		}
		return executor.Sequence(fc, executor.Do(func() {
			if err := fc.Err(); err != nil {
				log.Warn("file watch error", logx.String("path", path), logx.Err(err))
			}
			_ = fc.Close()
		}))
	})
}

// NewLimiter builds the shared limiter for the "rate" step, or nil when
// rate limiting is off.
func NewLimiter(c config.RateConfig) *rate.Limiter {
	if c.PerSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.PerSec), max(c.Burst, 1))
}
