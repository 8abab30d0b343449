package errlog

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	filePrefix = "errors-"
	fileSuffix = ".log"
	dateLayout = "2006-01-02"
)

// Writer appends to LOG_DIR/errors-YYYY-MM-DD.log, switching files when the day changes.
type Writer struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	date string
	file *os.File
}

type Option func(*Writer)

func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

func New(dir string, options ...Option) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	w := &Writer{
		dir: dir,
		now: time.Now,
	}

	for _, option := range options {
		option(w)
	}

	return w, nil
}

// Logger returns a JSON slog logger writing one record per line.
func (w *Writer) Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}

func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	date := w.now().Format(dateLayout)

	if w.file == nil || date != w.date {
		if w.file != nil {
			w.file.Close()
		}

		f, err := os.OpenFile(w.path(date), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)

		if err != nil {
			w.file = nil
			return 0, err
		}

		w.file = f
		w.date = date
	}

	return w.file.Write(p)
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil

	return err
}

// Prune deletes daily files older than retention and returns how many were removed.
func (w *Writer) Prune(retention time.Duration) (int, error) {
	entries, err := os.ReadDir(w.dir)

	if err != nil {
		return 0, err
	}

	today, _ := time.Parse(dateLayout, w.now().Format(dateLayout))
	cutoff := today.Add(-retention)

	var removed int
	var errs []error

	for _, e := range entries {
		name := e.Name()

		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		date, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))

		if err != nil || !date.Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(w.dir, name)); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", name, err))
			continue
		}

		removed++
	}

	return removed, errors.Join(errs...)
}

func (w *Writer) path(date string) string {
	return filepath.Join(w.dir, filePrefix+date+fileSuffix)
}
