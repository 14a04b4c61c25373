package config

import "fortio.org/safecast"

// Config is the host configuration. It is decoded strictly: unknown keys in
// JSON, YAML or TOML are rejected.
//
// Example (YAML):
//
//	executor: { queue_size: 10000, history_size: 200 }
//	logging: { level: info, console: true }
//	rate: { per_sec: 5, burst: 1 }
//	jobs:
//	  - name: greet
//	    steps: ["log:howdy!", "sleep:2s", "log:done!"]
type Config struct {
	Executor ExecutorConfig `json:"executor"`
	Logging  LoggingConfig  `json:"logging"`
	Storage  *StorageConfig `json:"storage,omitempty"`
	Rate     RateConfig     `json:"rate"`
	Jobs     []JobConfig    `json:"jobs"`
}

// ExecutorConfig sizes the executor.
//
// Defaults (when fields are omitted/zero):
//   - queue_size: 10000
//   - history_size: 200
type ExecutorConfig struct {
	QueueSize   int64 `json:"queue_size,omitempty"`
	HistorySize int64 `json:"history_size,omitempty"`
}

const (
	DefaultQueueSize   = 10_000
	DefaultHistorySize = 200
)

// Capacity converts QueueSize to an int, applying the default.
func (e ExecutorConfig) Capacity() (int, error) {
	return positiveInt("executor.queue_size", e.QueueSize, DefaultQueueSize)
}

func (e ExecutorConfig) History() (int, error) {
	return positiveInt("executor.history_size", e.HistorySize, DefaultHistorySize)
}

func positiveInt(path string, v int64, def int) (int, error) {
	if v == 0 {
		return def, nil
	}
	if v < 0 {
		return 0, fieldError(path, "must be >= 0")
	}
	n, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fieldError(path, err.Error())
	}
	return n, nil
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// StorageConfig selects the run journal backend. Omit it (or use driver
// "none") to disable the journal.
//
//	"storage": { "driver": "sqlite", "path": "./pollrt.db", "busy_timeout": "5s" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// RateConfig is the shared limiter behind the "rate" job step. PerSec <= 0
// disables limiting.
type RateConfig struct {
	PerSec float64 `json:"per_sec"`
	Burst  int     `json:"burst"`
}

// JobConfig is one computation spawned at start-up.
//
// Steps run in order; each is one of
//
//	log:<message>  sleep:<duration>  at:<schedule>  file:<path>  rate  yield
//
// Repeat runs the whole step list that many times (0 or 1 = once, -1 = forever).
type JobConfig struct {
	Name   string   `json:"name"`
	Steps  []string `json:"steps"`
	Repeat int      `json:"repeat,omitempty"`
}
