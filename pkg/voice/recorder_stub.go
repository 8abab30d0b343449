//go:build !voice

package voice

import (
	"context"
	"time"
)

const recorderAvailable = false

type stubRecorder struct{}

// NewRecorder returns a recorder that always fails; build with -tags voice for microphone support.
func NewRecorder() Recorder {
	return stubRecorder{}
}

func (stubRecorder) Record(ctx context.Context, maxDuration time.Duration) (*Recording, error) {
	return nil, ErrNoDevice
}
