package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	logx "pollrt/pkg/logx"
)

func sampleRun(i int) RunRecord {
	start := time.Date(2024, 5, 1, 10, 0, i, 0, time.UTC)
	return RunRecord{
		TaskID:     uint64(i),
		Name:       "job",
		Spawned:    start,
		Finished:   start.Add(1500 * time.Millisecond),
		Polls:      uint64(i + 1),
		DurationMS: 1500,
	}
}

func TestOpenDisabled(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"", "none", " Off "} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("Open(%q) = %v, %v, want nil, nil", driver, st, err)
		}
	}
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "file"}, logx.Nop()); !errors.Is(err, ErrPathRequired) {
		t.Fatalf("Open(file, no path) error = %v, want ErrPathRequired", err)
	}
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("Open(redis) error = %v, want ErrUnknownDriver", err)
	}
}

func TestDrivers(t *testing.T) {
	t.Parallel()
	for _, driver := range []string{"file", "sqlite"} {
		driver := driver
		t.Run(driver, func(t *testing.T) {
			t.Parallel()
			cfg := Config{Driver: driver, Path: filepath.Join(t.TempDir(), "nested", "pollrt.db"), BusyTimeout: time.Second}
			ctx := context.Background()

			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("Open error: %v", err)
			}
			for i := 0; i < 3; i++ {
				if err := st.AppendRun(ctx, sampleRun(i)); err != nil {
					t.Fatalf("AppendRun error: %v", err)
				}
			}

			got, err := st.RecentRuns(ctx, 2)
			if err != nil {
				t.Fatalf("RecentRuns error: %v", err)
			}
			if len(got) != 2 || got[0].TaskID != 2 || got[1].TaskID != 1 {
				t.Fatalf("RecentRuns(2) = %+v, want tasks 2, 1", got)
			}
			want := sampleRun(2)
			if !got[0].Spawned.Equal(want.Spawned) || !got[0].Finished.Equal(want.Finished) || got[0].Polls != want.Polls {
				t.Fatalf("RecentRuns[0] = %+v, want %+v", got[0], want)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("Close error: %v", err)
			}
			if err := st.AppendRun(ctx, sampleRun(9)); !errors.Is(err, ErrClosed) {
				t.Fatalf("AppendRun after Close error = %v, want ErrClosed", err)
			}

			// Reopen: the journal survives.
			st, err = Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("reopen error: %v", err)
			}
			defer st.Close()
			got, err = st.RecentRuns(ctx, 10)
			if err != nil {
				t.Fatalf("RecentRuns error: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("after reopen len = %d, want 3", len(got))
			}
		})
	}
}

func TestFileSkipsCorruptLines(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "j.runs.jsonl"), []byte("{not json}\n{\"task_id\":7,\"name\":\"x\"}\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "j.log")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer st.Close()
	got, err := st.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns error: %v", err)
	}
	if len(got) != 1 || got[0].TaskID != 7 {
		t.Fatalf("RecentRuns = %+v, want the one valid record", got)
	}
}
