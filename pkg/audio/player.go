package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

var ErrEmpty = errors.New("audio data is empty")

// Player plays MP3 audio through the default output device. The device context
// is opened lazily on first use and shared for the lifetime of the process, so
// all clips must use the same sample rate.
type Player struct {
	once sync.Once
	mu   sync.Mutex

	context    *oto.Context
	sampleRate int
	err        error
}

func NewPlayer() *Player {
	return &Player{}
}

// Play decodes data as MP3 and blocks until playback finished or ctx is done.
func (p *Player) Play(ctx context.Context, data []byte) error {
	if len(data) == 0 {
		return ErrEmpty
	}

	decoder, err := mp3.NewDecoder(bytes.NewReader(data))

	if err != nil {
		return fmt.Errorf("failed to decode mp3: %w", err)
	}

	otoCtx, err := p.open(decoder.SampleRate())

	if err != nil {
		return err
	}

	// one clip at a time on the shared context
	p.mu.Lock()
	defer p.mu.Unlock()

	player := otoCtx.NewPlayer(decoder)
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()

		case <-ticker.C:
		}
	}

	return player.Err()
}

func (p *Player) open(sampleRate int) (*oto.Context, error) {
	p.once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, ready, err := oto.NewContext(op)

		if err != nil {
			p.err = fmt.Errorf("failed to open audio device: %w", err)
			return
		}

		<-ready

		p.context = ctx
		p.sampleRate = sampleRate
	})

	if p.err != nil {
		return nil, p.err
	}

	if sampleRate != p.sampleRate {
		return nil, fmt.Errorf("unsupported sample rate %d, device opened at %d", sampleRate, p.sampleRate)
	}

	return p.context, nil
}
