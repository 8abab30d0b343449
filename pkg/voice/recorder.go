package voice

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
)

// Recorder captures microphone audio until maxDuration elapsed or ctx is done.
type Recorder interface {
	Record(ctx context.Context, maxDuration time.Duration) (*Recording, error)
}

// Recording holds captured 16-bit PCM chunks in capture order.
type Recording struct {
	SampleRate int
	Channels   int

	Chunks [][]int16
}

func (r *Recording) Samples() int {
	if r == nil {
		return 0
	}

	var n int

	for _, c := range r.Chunks {
		n += len(c)
	}

	return n
}

// WAV assembles the recorded chunks into a single WAV file.
func (r *Recording) WAV() ([]byte, error) {
	if r.Samples() == 0 {
		return nil, ErrNoAudio
	}

	rate := r.SampleRate

	if rate <= 0 {
		rate = DefaultSampleRate
	}

	channels := r.Channels

	if channels <= 0 {
		channels = DefaultChannels
	}

	// the encoder patches the header after writing and needs a seekable target
	f, err := os.CreateTemp("", "t101-recording-*.wav")

	if err != nil {
		return nil, err
	}

	defer os.Remove(f.Name())
	defer f.Close()

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  rate,
		},

		Data:           make([]int, 0, r.Samples()),
		SourceBitDepth: 16,
	}

	for _, chunk := range r.Chunks {
		for _, s := range chunk {
			buf.Data = append(buf.Data, int(s))
		}
	}

	enc := wav.NewEncoder(f, rate, 16, channels, 1)

	if err := enc.Write(buf); err != nil {
		enc.Close()
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode wav: %w", err)
	}

	return os.ReadFile(f.Name())
}
