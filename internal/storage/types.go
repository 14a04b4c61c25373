package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrClosed        = errors.New("storage closed")
	ErrUnknownDriver = errors.New("unknown storage driver")
	ErrPathRequired  = errors.New("storage path is required")
)

// Config configures storage. An empty or "none" Driver disables it.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 keeps the driver default
}

// RunRecord is one completed task. Keep it compact and schema-stable.
type RunRecord struct {
	TaskID     uint64    `json:"task_id"`
	Name       string    `json:"name"`
	Spawned    time.Time `json:"spawned"`
	Finished   time.Time `json:"finished"`
	Polls      uint64    `json:"polls"`
	DurationMS int64     `json:"duration_ms"`
}

// Store is the run journal.
type Store interface {
	AppendRun(ctx context.Context, r RunRecord) error
	// RecentRuns returns up to limit records, newest first.
	RecentRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
