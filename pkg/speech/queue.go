package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/adrianliechti/t101/pkg/provider"
)

var ErrClosed = errors.New("speech queue closed")

// Player plays synthesized audio to completion.
type Player interface {
	Play(ctx context.Context, data []byte) error
}

// NativeSpeaker speaks text with an on-device engine.
type NativeSpeaker interface {
	Speak(ctx context.Context, text string) error
}

type Options struct {
	Voice string
	Model string

	Stability       *float64
	SimilarityBoost *float64

	// Silent completes the item without producing sound.
	Silent bool

	// UseNative skips the remote synthesizer.
	UseNative bool
}

type item struct {
	text    string
	options Options

	done chan struct{}
}

// Queue serializes utterances: items are spoken one at a time in submission
// order by a single drain goroutine that exits when the queue is empty.
type Queue struct {
	remote provider.Synthesizer
	player Player
	native NativeSpeaker

	logger *slog.Logger

	mu       sync.Mutex
	items    []*item
	draining bool
	closed   bool

	wg sync.WaitGroup
}

type Option func(*Queue)

func WithSynthesizer(s provider.Synthesizer, p Player) Option {
	return func(q *Queue) {
		q.remote = s
		q.player = p
	}
}

func WithNative(n NativeSpeaker) Option {
	return func(q *Queue) {
		q.native = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = l
	}
}

func New(options ...Option) *Queue {
	q := &Queue{
		logger: slog.Default(),
	}

	for _, option := range options {
		option(q)
	}

	return q
}

// Speak enqueues text and waits until it has been spoken. Failures are logged
// and never returned; if ctx is done first, Speak returns ctx.Err() while the
// item stays queued.
func (q *Queue) Speak(ctx context.Context, text string, options Options) error {
	done, err := q.Enqueue(text, options)

	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue appends text without waiting. The returned channel is closed once
// the item has been spoken or given up on.
func (q *Queue) Enqueue(text string, options Options) (<-chan struct{}, error) {
	i := &item{
		text:    text,
		options: options,

		done: make(chan struct{}),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil, ErrClosed
	}

	q.items = append(q.items, i)

	if !q.draining {
		q.draining = true

		q.wg.Add(1)
		go q.drain()
	}

	return i.done, nil
}

// Pending returns the number of items not yet started.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Close stops accepting items and waits for queued items to finish.
func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()

	return nil
}

func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()

		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()

			return
		}

		i := q.items[0]
		q.items[0] = nil
		q.items = q.items[1:]

		q.mu.Unlock()

		q.process(i)
		close(i.done)
	}
}

func (q *Queue) process(i *item) {
	if i.options.Silent {
		return
	}

	ctx := context.Background()

	if q.remote != nil && q.player != nil && !i.options.UseNative {
		err := q.speakRemote(ctx, i)

		if err == nil {
			return
		}

		q.logger.Warn("remote speech failed, falling back to native", "error", err)
	}

	if q.native == nil {
		q.logger.Warn("no native speech engine available")
		return
	}

	if err := q.native.Speak(ctx, i.text); err != nil {
		q.logger.Error("native speech failed", "error", err)
	}
}

func (q *Queue) speakRemote(ctx context.Context, i *item) error {
	synthesis, err := q.remote.Synthesize(ctx, i.text, &provider.SynthesizeOptions{
		Voice: i.options.Voice,
		Model: i.options.Model,

		Stability:       i.options.Stability,
		SimilarityBoost: i.options.SimilarityBoost,
	})

	if err != nil {
		return err
	}

	return q.player.Play(ctx, synthesis.Content)
}
