package sources

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"pollrt/internal/executor"
)

const fileChangeOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// FileChange becomes ready the first time path is written, created, renamed
// or removed after the watch started.
//
// The watch is on the parent directory, so editors that replace the file
// through a rename are still seen. A watcher failure also completes the
// suspension; Err tells the two apart.
type FileChange struct {
	path string
	s    *executor.Suspension
	w    *fsnotify.Watcher

	mu  sync.Mutex
	err error

	closeOnce sync.Once
}

func NewFileChange(path string) (*FileChange, error) {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, err
	}
	f := &FileChange{path: path, s: executor.NewSuspension(), w: w}
	go f.loop()
	return f, nil
}

func (f *FileChange) loop() {
	defer f.Close()
	for {
		select {
		case ev, ok := <-f.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == f.path && ev.Op&fileChangeOps != 0 {
				return
			}
		case err, ok := <-f.w.Errors:
			if !ok {
				return
			}
			if err != nil {
				f.mu.Lock()
				f.err = err
				f.mu.Unlock()
				return
			}
		}
	}
}

func (f *FileChange) Poll(w *executor.Waker) executor.Poll { return f.s.Poll(w) }

func (f *FileChange) Path() string { return f.path }

// Err reports the watcher error that completed f, if any.
func (f *FileChange) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Close stops watching and completes f. Safe to call more than once.
func (f *FileChange) Close() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.w.Close()
		f.s.Complete()
	})
	return err
}
