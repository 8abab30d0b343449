package client

import (
	"context"
	"io"
	"net/http"

	"github.com/adrianliechti/t101/pkg/provider"
)

var _ provider.Synthesizer = (*SpeechService)(nil)

type SpeechService struct {
	Options []RequestOption
}

func NewSpeechService(opts ...RequestOption) SpeechService {
	return SpeechService{
		Options: opts,
	}
}

type Synthesis = provider.Synthesis
type SynthesizeOptions = provider.SynthesizeOptions

type SpeechResult struct {
	Synthesis

	// Cached reports whether the server answered from its speech cache.
	Cached bool
}

// Synthesize lets the server act as the remote synthesizer of a speech queue.
func (r *SpeechService) Synthesize(ctx context.Context, input string, options *SynthesizeOptions) (*Synthesis, error) {
	result, err := r.New(ctx, input, options)

	if err != nil {
		return nil, err
	}

	return &result.Synthesis, nil
}

func (r *SpeechService) New(ctx context.Context, input string, options *SynthesizeOptions, opts ...RequestOption) (*SpeechResult, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	if options == nil {
		options = new(SynthesizeOptions)
	}

	body := struct {
		Text string `json:"text"`

		VoiceID string `json:"voiceId,omitempty"`
		ModelID string `json:"modelId,omitempty"`

		Stability       *float64 `json:"stability,omitempty"`
		SimilarityBoost *float64 `json:"similarityBoost,omitempty"`
	}{
		Text: input,

		VoiceID: options.Voice,
		ModelID: options.Model,

		Stability:       options.Stability,
		SimilarityBoost: options.SimilarityBoost,
	}

	req, err := c.newJsonRequest(ctx, http.MethodPost, "/api/tts", body)

	if err != nil {
		return nil, err
	}

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, convertError(resp)
	}

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	return &SpeechResult{
		Synthesis: Synthesis{
			Model: options.Model,

			Content:     data,
			ContentType: resp.Header.Get("Content-Type"),
		},

		Cached: resp.Header.Get("X-Cache") == "HIT",
	}, nil
}
