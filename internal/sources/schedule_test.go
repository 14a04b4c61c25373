package sources

import (
	"testing"
	"time"
)

func TestParseScheduleVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		raw    string
		kind   Kind
		source string
		every  time.Duration
	}{
		{name: "cron", raw: "*/5 * * * *", kind: KindCron, source: "cron"},
		{name: "descriptor", raw: "@hourly", kind: KindCron, source: "cron"},
		{name: "every descriptor", raw: "@every 90s", kind: KindCron, source: "cron"},
		{name: "prefixed cron", raw: "cron:0 0 * * *", kind: KindCron, source: "cron"},
		{name: "duration", raw: "10m", kind: KindInterval, source: "duration", every: 10 * time.Minute},
		{name: "prefixed interval", raw: "interval:45s", kind: KindInterval, source: "duration", every: 45 * time.Second},
		{name: "every prefix", raw: "EVERY: 2h", kind: KindInterval, source: "duration", every: 2 * time.Hour},
		{name: "hhmm", raw: "01:30", kind: KindInterval, source: "hhmm", every: 90 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSchedule(tt.raw)
			if err != nil {
				t.Fatalf("ParseSchedule(%q) error: %v", tt.raw, err)
			}
			if got.Kind != tt.kind {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.Source != tt.source {
				t.Fatalf("Source = %s, want %s", got.Source, tt.source)
			}
			if tt.kind == KindInterval && got.Every != tt.every {
				t.Fatalf("Every = %v, want %v", got.Every, tt.every)
			}
		})
	}
}

func TestParseScheduleInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-schedule", "cron:", "cron:61 * * * *", "00:00", "interval:-5s", "12:75"} {
		if _, err := ParseSchedule(raw); err == nil {
			t.Fatalf("ParseSchedule(%q) error = nil, want error", raw)
		}
	}
}

func TestParsedSpecNext(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 10, 15, 0, 0, time.UTC)

	hourly, err := ParseSchedule("0 * * * *")
	if err != nil {
		t.Fatalf("ParseSchedule error: %v", err)
	}
	if got, want := hourly.Next(now), time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}

	interval, err := ParseSchedule("00:05")
	if err != nil {
		t.Fatalf("ParseSchedule error: %v", err)
	}
	if got, want := interval.Next(now), now.Add(5*time.Minute); !got.Equal(want) {
		t.Fatalf("Next = %v, want %v", got, want)
	}

	handBuilt := ParsedSpec{Kind: KindCron, Cron: "30 10 * * *"}
	if got, want := handBuilt.Next(now), time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("hand-built Next = %v, want %v", got, want)
	}
}

func TestNewCron(t *testing.T) {
	t.Parallel()
	now := time.Now()
	tm, err := NewCron("@every 1h", now)
	if err != nil {
		t.Fatalf("NewCron error: %v", err)
	}
	if d := tm.Deadline().Sub(now); d < 59*time.Minute || d > 61*time.Minute {
		t.Fatalf("deadline in %v, want about 1h", d)
	}
	if tm.Fired() {
		t.Fatal("Fired() = true right after NewCron")
	}
	if _, err := NewCron("bogus", now); err == nil {
		t.Fatal("NewCron(bogus) error = nil, want error")
	}
}
