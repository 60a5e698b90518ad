package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyWriter appends to one file per calendar day, named
// <prefix>-YYYY-MM-DD.log under dir. Files are append-only and never
// rewritten; the writer switches files when the date changes.
type DailyWriter struct {
	dir    string
	prefix string

	mu      sync.Mutex
	date    string
	file    *os.File

	// now is swappable for tests.
	now func() time.Time
}

// NewDailyWriter creates dir if needed and returns a writer for the stream
// named by prefix ("access", "error").
func NewDailyWriter(dir, prefix string) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &DailyWriter{dir: dir, prefix: prefix, now: time.Now}, nil
}

// Write appends b to today's file, opening or rotating as needed.
func (w *DailyWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	today := w.now().Format("2006-01-02")
	if w.file == nil || w.date != today {
		if w.file != nil {
			w.file.Close()
		}
		f, err := os.OpenFile(w.path(today), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		w.file = f
		w.date = today
	}

	return w.file.Write(b)
}

// Close releases the current file handle.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *DailyWriter) path(date string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.log", w.prefix, date))
}
