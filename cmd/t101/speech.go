package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/adrianliechti/t101/pkg/audio"
	"github.com/adrianliechti/t101/pkg/client"
	"github.com/adrianliechti/t101/pkg/speech"
	"github.com/adrianliechti/t101/pkg/text"
	"github.com/adrianliechti/t101/pkg/voice"
)

const maxSpeechChunk = 5000

type speechFlags struct {
	voice  string
	model  string
	native bool
}

func newQueue(c *client.Client, remote bool) *speech.Queue {
	logger := slog.Default().With("component", "speech")

	options := []speech.Option{
		speech.WithLogger(logger),
	}

	if remote {
		options = append(options, speech.WithSynthesizer(&c.Speech, audio.NewPlayer()))
	}

	if native, err := speech.DetectNative(); err == nil {
		logger.Debug("native speech engine", "path", native.Name())
		options = append(options, speech.WithNative(native))
	} else {
		logger.Debug("native speech unavailable", "error", err)
	}

	return speech.New(options...)
}

// speak strips markdown from reply and queues it in chunks the server accepts.
func speak(q *speech.Queue, reply string, flags speechFlags) (<-chan struct{}, error) {
	var done <-chan struct{}

	for _, chunk := range text.Chunks(text.Speakable(reply), maxSpeechChunk) {
		ch, err := q.Enqueue(chunk, speech.Options{
			Voice:     flags.voice,
			Model:     flags.model,
			UseNative: flags.native,
		})

		if err != nil {
			return nil, err
		}

		done = ch
	}

	if done == nil {
		ch := make(chan struct{})
		close(ch)

		done = ch
	}

	return done, nil
}

func newResolver(c *client.Client, language string) (*voice.Resolver, voice.Capabilities) {
	command := os.Getenv("VOICE_RECOGNIZER")
	caps := voice.Detect(command)

	options := []voice.Option{
		voice.WithLanguage(language),
		voice.WithRecorder(voice.NewRecorder(), &c.Transcriptions),
	}

	if caps.Recognizer {
		if r, err := voice.NewCommandRecognizer(command); err == nil {
			options = append(options, voice.WithRecognizer(r))
		}
	}

	return voice.NewResolver(options...), caps
}

func listen(ctx context.Context, r *voice.Resolver, maxDuration time.Duration) (string, error) {
	transcript, err := r.Resolve(ctx, maxDuration)

	if errors.Is(err, voice.ErrNoDevice) {
		return "", fmt.Errorf("%w (build with -tags voice or set VOICE_RECOGNIZER)", err)
	}

	return transcript, err
}
