package limiter

import (
	"sync"
	"time"
)

// Window is a fixed-window request counter keyed by caller (API key or IP).
// Entries live in memory only.
type Window struct {
	mu sync.Mutex

	window time.Duration
	max    int

	entries map[string]*Entry

	now func() time.Time
}

type Entry struct {
	Key string

	WindowStart time.Time
	Count       int
}

type Result struct {
	Allowed bool

	Limit     int
	Remaining int

	Reset      time.Time
	RetryAfter time.Duration
}

type WindowOption func(*Window)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) WindowOption {
	return func(w *Window) {
		w.now = now
	}
}

func NewWindow(window time.Duration, max int, options ...WindowOption) *Window {
	w := &Window{
		window: window,
		max:    max,

		entries: make(map[string]*Entry),

		now: time.Now,
	}

	for _, option := range options {
		option(w)
	}

	return w
}

func (w *Window) Allow(key string) Result {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()

	entry, ok := w.entries[key]

	if !ok || now.After(entry.WindowStart.Add(w.window)) {
		entry = &Entry{
			Key:         key,
			WindowStart: now,
		}

		w.entries[key] = entry
	}

	entry.Count++

	reset := entry.WindowStart.Add(w.window)

	result := Result{
		Allowed: entry.Count <= w.max,

		Limit:     w.max,
		Remaining: max(w.max-entry.Count, 0),

		Reset: reset,
	}

	if !result.Allowed {
		result.RetryAfter = reset.Sub(now)
	}

	return result
}

// Sweep drops entries whose window has ended and returns how many were removed.
func (w *Window) Sweep() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	removed := 0

	for key, entry := range w.entries {
		if now.After(entry.WindowStart.Add(w.window)) {
			delete(w.entries, key)
			removed++
		}
	}

	return removed
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.entries)
}
