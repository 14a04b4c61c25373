package sources

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"pollrt/internal/executor"
)

// Kind is the normalized form of a schedule string.
type Kind int

const (
	KindCron Kind = iota
	KindInterval
)

func (k Kind) String() string {
	if k == KindInterval {
		return "interval"
	}
	return "cron"
}

// ParsedSpec is a schedule: a cron expression or a fixed interval.
//
// Accepted forms:
//   - cron: "*/5 * * * *", "@hourly", "@every 90s"
//   - interval: "55m", "2h30m", "01:30" (HH:MM, 90 minutes)
//   - explicit prefixes "cron:", "interval:" and "every:"
type ParsedSpec struct {
	Kind   Kind
	Cron   string
	Every  time.Duration
	Source string // "cron" | "duration" | "hhmm"

	sched cron.Schedule
}

var (
	errEmptySchedule   = errors.New("schedule required")
	errIntervalNotPos  = errors.New("interval must be > 0")
	hhmmPattern        = regexp.MustCompile(`^(\d{1,3}):([0-5]\d)$`)
	schedulePrefixList = []string{"cron:", "interval:", "every:"}
)

// ParseSchedule parses raw into a cron or interval schedule. Cron expressions
// are validated with the standard five-field parser.
func ParseSchedule(raw string) (ParsedSpec, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ParsedSpec{}, errEmptySchedule
	}

	prefix, rest := splitPrefix(s)
	switch prefix {
	case "cron:":
		return parseCron(rest)
	case "interval:", "every:":
		return parseInterval(rest)
	}

	if strings.HasPrefix(s, "@") || strings.ContainsAny(s, " \t") {
		return parseCron(s)
	}
	spec, err := parseInterval(s)
	if err != nil {
		return ParsedSpec{}, fmt.Errorf("invalid schedule %q (want cron like '*/5 * * * *', HH:MM like '01:30' or a duration like '55m')", raw)
	}
	return spec, nil
}

func splitPrefix(s string) (string, string) {
	low := strings.ToLower(s)
	for _, p := range schedulePrefixList {
		if strings.HasPrefix(low, p) {
			return p, strings.TrimSpace(s[len(p):])
		}
	}
	return "", s
}

func parseCron(expr string) (ParsedSpec, error) {
	if expr == "" {
		return ParsedSpec{}, errEmptySchedule
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return ParsedSpec{}, fmt.Errorf("cron %q: %w", expr, err)
	}
	return ParsedSpec{Kind: KindCron, Cron: expr, Source: "cron", sched: sched}, nil
}

func parseInterval(v string) (ParsedSpec, error) {
	if v == "" {
		return ParsedSpec{}, errEmptySchedule
	}
	if m := hhmmPattern.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		d := time.Duration(h)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return ParsedSpec{}, errIntervalNotPos
		}
		return ParsedSpec{Kind: KindInterval, Every: d, Source: "hhmm"}, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return ParsedSpec{}, fmt.Errorf("invalid interval %q: %w", v, err)
	}
	if d <= 0 {
		return ParsedSpec{}, errIntervalNotPos
	}
	return ParsedSpec{Kind: KindInterval, Every: d, Source: "duration"}, nil
}

// Next returns the first fire time strictly after now.
func (p ParsedSpec) Next(now time.Time) time.Time {
	if p.Kind == KindInterval {
		return now.Add(p.Every)
	}
	sched := p.sched
	if sched == nil {
		// Zero-value or hand-built spec; parse on demand.
		var err error
		if sched, err = cron.ParseStandard(p.Cron); err != nil {
			return time.Time{}
		}
	}
	return sched.Next(now)
}

// At waits until the next fire time of spec, computed at the first poll.
// An unparseable hand-built spec completes immediately.
func At(spec ParsedSpec) executor.Computation {
	return executor.Lazy(func() executor.Computation {
		next := spec.Next(time.Now())
		if next.IsZero() {
			return nil
		}
		return executor.NewDeadline(next)
	})
}

// NewCron starts a timer that fires at the next activation of expr after now.
func NewCron(expr string, now time.Time) (*executor.Timer, error) {
	spec, err := parseCron(strings.TrimSpace(expr))
	if err != nil {
		return nil, err
	}
	return executor.NewDeadline(spec.Next(now)), nil
}
