package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	logx "pollrt/pkg/logx"
)

// fileTail bounds the records kept in memory for RecentRuns.
const fileTail = 1000

// fileStore appends runs to <prefix>.runs.jsonl and keeps the newest
// records in memory. Existing lines are replayed on open.
type fileStore struct {
	log logx.Logger

	mu   sync.Mutex
	f    *os.File
	enc  *json.Encoder
	tail []RunRecord // oldest first
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	runsPath := filepath.Join(dir, base+".runs.jsonl")

	tail, skipped, err := replayRuns(runsPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if skipped > 0 {
		log.Warn("skipped corrupt journal lines", logx.String("path", runsPath), logx.Int("lines", skipped))
	}

	f, err := os.OpenFile(runsPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &fileStore{log: log, f: f, enc: json.NewEncoder(f), tail: tail}, nil
}

func replayRuns(path string) (tail []RunRecord, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r RunRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			skipped++
			continue
		}
		tail = appendBounded(tail, r)
	}
	return tail, skipped, sc.Err()
}

func appendBounded(tail []RunRecord, r RunRecord) []RunRecord {
	tail = append(tail, r)
	if len(tail) > fileTail {
		tail = tail[len(tail)-fileTail:]
	}
	return tail
}

func (s *fileStore) AppendRun(_ context.Context, r RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return ErrClosed
	}
	if err := s.enc.Encode(r); err != nil {
		return err
	}
	s.tail = appendBounded(s.tail, r)
	return nil
}

func (s *fileStore) RecentRuns(_ context.Context, limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil, ErrClosed
	}
	n := min(limit, len(s.tail))
	if n <= 0 {
		return nil, nil
	}
	out := make([]RunRecord, 0, n)
	for i := len(s.tail) - 1; i >= len(s.tail)-n; i-- {
		out = append(out, s.tail[i])
	}
	return out, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}
