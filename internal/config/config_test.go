package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

const sampleJSON = `{
  "executor": {"queue_size": 64, "history_size": 10},
  "logging": {"level": "debug", "console": true},
  "storage": {"driver": "file", "path": "./runs"},
  "rate": {"per_sec": 2, "burst": 1},
  "jobs": [
    {"name": "greet", "steps": ["log:howdy!", "sleep:2s", "log:done!"]},
    {"name": "tick", "steps": ["rate", "yield"], "repeat": 3}
  ]
}`

const sampleYAML = `
executor:
  queue_size: 64
  history_size: 10
logging:
  level: debug
  console: true
storage:
  driver: file
  path: ./runs
rate:
  per_sec: 2
  burst: 1
jobs:
  - name: greet
    steps: ["log:howdy!", "sleep:2s", "log:done!"]
  - name: tick
    steps: [rate, yield]
    repeat: 3
`

const sampleTOML = `
[executor]
queue_size = 64
history_size = 10

[logging]
level = "debug"
console = true

[storage]
driver = "file"
path = "./runs"

[rate]
per_sec = 2.0
burst = 1

[[jobs]]
name = "greet"
steps = ["log:howdy!", "sleep:2s", "log:done!"]

[[jobs]]
name = "tick"
steps = ["rate", "yield"]
repeat = 3
`

func TestDecodeFormatsAgree(t *testing.T) {
	t.Parallel()
	want, err := Decode("c.json", []byte(sampleJSON))
	if err != nil {
		t.Fatalf("Decode(json) error: %v", err)
	}
	if want.Executor.QueueSize != 64 || len(want.Jobs) != 2 || want.Jobs[1].Repeat != 3 {
		t.Fatalf("Decode(json) = %+v", want)
	}

	for _, tc := range []struct{ path, data string }{
		{"c.yaml", sampleYAML},
		{"c.yml", sampleYAML},
		{"c.toml", sampleTOML},
	} {
		got, err := Decode(tc.path, []byte(tc.data))
		if err != nil {
			t.Fatalf("Decode(%s) error: %v", tc.path, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Decode(%s) = %+v, want %+v", tc.path, got, want)
		}
	}
}

func TestDecodeStrict(t *testing.T) {
	t.Parallel()
	if _, err := Decode("c.json", []byte(`{"executor": {"workers": 2}}`)); err == nil {
		t.Fatal("unknown field accepted in json")
	}
	if _, err := Decode("c.yaml", []byte("bogus: 1\n")); err == nil {
		t.Fatal("unknown field accepted in yaml")
	}
	if _, err := Decode("c.json", []byte(`{} {}`)); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("trailing data error = %v, want ErrTrailingData", err)
	}
	if _, err := Decode("c.ini", []byte(``)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("ini error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base := func() *Config {
		cfg, err := Decode("c.json", []byte(sampleJSON))
		if err != nil {
			t.Fatalf("Decode error: %v", err)
		}
		return cfg
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "negative queue", mutate: func(c *Config) { c.Executor.QueueSize = -1 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "bad driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: true},
		{name: "bad busy timeout", mutate: func(c *Config) { c.Storage.BusyTimeout = "soon" }, wantErr: true},
		{name: "rate without burst", mutate: func(c *Config) { c.Rate.Burst = 0 }, wantErr: true},
		{name: "unnamed job", mutate: func(c *Config) { c.Jobs[0].Name = " " }, wantErr: true},
		{name: "duplicate job", mutate: func(c *Config) { c.Jobs[1].Name = "greet" }, wantErr: true},
		{name: "no steps", mutate: func(c *Config) { c.Jobs[0].Steps = nil }, wantErr: true},
		{name: "forever", mutate: func(c *Config) { c.Jobs[1].Repeat = -1 }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestExecutorDefaults(t *testing.T) {
	t.Parallel()
	var e ExecutorConfig
	if n, err := e.Capacity(); err != nil || n != DefaultQueueSize {
		t.Fatalf("Capacity() = %d, %v, want %d", n, err, DefaultQueueSize)
	}
	if n, err := e.History(); err != nil || n != DefaultHistorySize {
		t.Fatalf("History() = %d, %v, want %d", n, err, DefaultHistorySize)
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", " 1500ms "); err != nil || d != 1500*time.Millisecond {
		t.Fatalf("ParseDurationField = %v, %v, want 1.5s", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("negative duration accepted")
	}
	if d, err := ParseDurationOrDefault("x", "", time.Second); err != nil || d != time.Second {
		t.Fatalf("ParseDurationOrDefault = %v, %v, want 1s", d, err)
	}
}

func TestSummarizeChange(t *testing.T) {
	t.Parallel()
	oldCfg, _ := Decode("c.json", []byte(sampleJSON))
	newCfg, _ := Decode("c.json", []byte(sampleJSON))

	if changed, _, restart := SummarizeChange(oldCfg, newCfg); len(changed) != 0 || restart {
		t.Fatalf("identical configs: changed=%v restart=%v", changed, restart)
	}

	newCfg.Logging.Level = "warn"
	changed, fields, restart := SummarizeChange(oldCfg, newCfg)
	if !reflect.DeepEqual(changed, []string{"logging"}) || restart || len(fields) == 0 {
		t.Fatalf("logging change: changed=%v restart=%v fields=%d", changed, restart, len(fields))
	}

	newCfg.Jobs = newCfg.Jobs[:1]
	changed, _, restart = SummarizeChange(oldCfg, newCfg)
	if !reflect.DeepEqual(changed, []string{"logging", "jobs"}) || !restart {
		t.Fatalf("jobs change: changed=%v restart=%v", changed, restart)
	}
}

func TestManagerWatchPublishesReload(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pollrt.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Watch(ctx) }()

	updated := []byte(`{"logging": {"level": "warn"}, "jobs": []}`)
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-ch:
			if cfg.Logging.Level != "warn" {
				t.Fatalf("published level = %q, want warn", cfg.Logging.Level)
			}
			if got := m.Get(); got != cfg {
				t.Fatal("Get() does not return the published config")
			}
			return
		case <-tick.C:
			// Rewrite until the watcher, which starts asynchronously, sees it.
			if err := os.WriteFile(path, updated, 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
		case <-deadline:
			t.Fatal("no reload published within 5s")
		}
	}
}

func TestManagerWatchReportsFailure(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "missing", "pollrt.json"))
	if err := m.Watch(context.Background()); err == nil {
		t.Fatal("Watch on a missing directory returned nil, want error")
	}

	path := filepath.Join(t.TempDir(), "pollrt.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager(path).Watch(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestManagerValidatorRejects(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "pollrt.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m := NewManager(path)
	orig, err := m.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	m.SetValidator(func(context.Context, *Config) error { return errors.New("no") })

	if err := os.WriteFile(path, []byte("logging: {level: error}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m.reload(context.Background())
	if m.Get() != orig {
		t.Fatal("rejected config was committed")
	}
}
