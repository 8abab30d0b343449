//go:build voice

package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gordonklaus/portaudio"
)

const recorderAvailable = true

// PortAudioRecorder reads 16-bit mono samples from the default input device.
type PortAudioRecorder struct {
	SampleRate int
	FrameSize  int
}

func NewRecorder() Recorder {
	return &PortAudioRecorder{
		SampleRate: DefaultSampleRate,
		FrameSize:  1024,
	}
}

func (r *PortAudioRecorder) Record(ctx context.Context, maxDuration time.Duration) (*Recording, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, convertError(err)
	}

	defer portaudio.Terminate()

	in := make([]int16, r.FrameSize)

	stream, err := portaudio.OpenDefaultStream(DefaultChannels, 0, float64(r.SampleRate), len(in), in)

	if err != nil {
		return nil, convertError(err)
	}

	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, convertError(err)
	}

	defer stream.Stop()

	recording := &Recording{
		SampleRate: r.SampleRate,
		Channels:   DefaultChannels,
	}

	deadline := time.Now().Add(maxDuration)

	for time.Now().Before(deadline) {
		if ctx.Err() != nil {
			break
		}

		if err := stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				continue
			}

			return recording, convertError(err)
		}

		chunk := make([]int16, len(in))
		copy(chunk, in)

		recording.Chunks = append(recording.Chunks, chunk)
	}

	return recording, nil
}

func convertError(err error) error {
	if errors.Is(err, portaudio.DeviceUnavailable) {
		return fmt.Errorf("%w: %w", ErrDeviceBusy, err)
	}

	if errors.Is(err, portaudio.InvalidDevice) {
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "permission") || strings.Contains(msg, "not permitted") {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}

	if strings.Contains(msg, "no default input") {
		return fmt.Errorf("%w: %w", ErrNoDevice, err)
	}

	return err
}
