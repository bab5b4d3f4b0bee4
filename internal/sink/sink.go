// Package sink writes report and receipt artifacts to disk without
// blocking the caller.
package sink

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink queues artifacts and writes them from background workers. Emit
// never blocks: when the queue is full the artifact is dropped and the
// drop is logged.
type FileSink struct {
	dir   string
	queue chan artifact
	wg    sync.WaitGroup
	once  sync.Once
	now   func() time.Time
}

type artifact struct {
	name string
	body string
}

const queueSize = 128

// NewFileSink creates the artifact directory and starts the writer
// workers.
func NewFileSink(dir string, workers int) (*FileSink, error) {
	if workers <= 0 {
		workers = 2
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}

	s := &FileSink{
		dir:   dir,
		queue: make(chan artifact, queueSize),
		now:   time.Now,
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.run()
	}
	return s, nil
}

// Emit queues one artifact for writing. A full queue drops the artifact
// rather than stall the caller.
func (s *FileSink) Emit(name, body string) {
	select {
	case s.queue <- artifact{name: name, body: body}:
	default:
		slog.Warn("artifact queue full, dropping", "name", name)
	}
}

// Stop closes the queue and waits for queued artifacts to reach disk.
func (s *FileSink) Stop() {
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *FileSink) run() {
	defer s.wg.Done()
	for a := range s.queue {
		path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.txt", a.name, s.now().Format("20060102_150405")))
		if err := os.WriteFile(path, []byte(a.body), 0o644); err != nil {
			slog.Warn("artifact write failed", "path", path, "error", err)
			continue
		}
		slog.Debug("artifact written", "path", path)
	}
}
