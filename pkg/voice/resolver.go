package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adrianliechti/t101/pkg/provider"
)

// Grace is the time granted beyond the recording limit for transcription.
const Grace = 15 * time.Second

// Strategy is one way of turning speech into text.
type Strategy struct {
	Name string
	Run  func(ctx context.Context) (string, error)
}

type result struct {
	text string
	err  error
}

// FirstSuccessful tries strategies in order and returns the first transcript.
// If all fail, the last error is returned. A strategy that ignores ctx cannot
// hold the caller past ctx's deadline.
func FirstSuccessful(ctx context.Context, strategies ...Strategy) (string, error) {
	err := ErrNoBackend

	for _, s := range strategies {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		ch := make(chan result, 1)

		go func() {
			text, err := s.Run(ctx)
			ch <- result{text, err}
		}()

		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case r := <-ch:
			if r.err == nil {
				return r.text, nil
			}

			slog.Debug("voice strategy failed", "strategy", s.Name, "error", r.err)
			err = r.err
		}
	}

	return "", err
}

// Resolver turns one spoken utterance into text, preferring a live
// recognizer and falling back to recording plus remote transcription.
type Resolver struct {
	recognizer  Recognizer
	recorder    Recorder
	transcriber provider.Transcriber

	language string
	grace    time.Duration
}

type Option func(*Resolver)

func WithRecognizer(r Recognizer) Option {
	return func(res *Resolver) {
		res.recognizer = r
	}
}

func WithRecorder(r Recorder, t provider.Transcriber) Option {
	return func(res *Resolver) {
		res.recorder = r
		res.transcriber = t
	}
}

func WithLanguage(language string) Option {
	return func(res *Resolver) {
		res.language = language
	}
}

func WithGrace(d time.Duration) Option {
	return func(res *Resolver) {
		res.grace = d
	}
}

func NewResolver(options ...Option) *Resolver {
	r := &Resolver{
		grace: Grace,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Resolve listens for at most maxDuration and returns the transcript. The
// whole call is bounded by maxDuration plus the grace period.
func (r *Resolver) Resolve(ctx context.Context, maxDuration time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, maxDuration+r.grace)
	defer cancel()

	text, err := FirstSuccessful(ctx, r.Strategies(maxDuration)...)

	if errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return text, err
}

// Strategies returns the configured strategies in fallback order. With a
// recording fallback configured, the recognizer may use half of maxDuration,
// so the fallback can still record before the deadline.
func (r *Resolver) Strategies(maxDuration time.Duration) []Strategy {
	var strategies []Strategy

	fallback := r.recorder != nil && r.transcriber != nil

	if r.recognizer != nil {
		limit := maxDuration

		if fallback {
			limit = maxDuration / 2
		}

		strategies = append(strategies, Strategy{
			Name: "recognizer",
			Run: func(ctx context.Context) (string, error) {
				ctx, cancel := context.WithTimeout(ctx, limit)
				defer cancel()

				return r.recognizer.Recognize(ctx)
			},
		})
	}

	if fallback {
		strategies = append(strategies, Strategy{
			Name: "transcription",
			Run: func(ctx context.Context) (string, error) {
				return r.recordAndTranscribe(ctx, maxDuration)
			},
		})
	}

	return strategies
}

// recordAndTranscribe records for at most maxDuration, and never into the
// grace period reserved for transcription.
func (r *Resolver) recordAndTranscribe(ctx context.Context, maxDuration time.Duration) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		maxDuration = min(maxDuration, time.Until(deadline)-r.grace)
	}

	if maxDuration <= 0 {
		return "", ErrTimeout
	}

	recording, err := r.recorder.Record(ctx, maxDuration)

	if err != nil {
		return "", err
	}

	data, err := recording.WAV()

	if err != nil {
		return "", err
	}

	transcription, err := r.transcriber.Transcribe(ctx, provider.File{
		Name: "recording.wav",

		Content:     data,
		ContentType: "audio/wav",
	}, &provider.TranscribeOptions{
		Language: r.language,
	})

	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(transcription.Text)

	if text == "" {
		return "", ErrNoSpeech
	}

	return text, nil
}
