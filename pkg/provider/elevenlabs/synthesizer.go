package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/google/uuid"
)

var _ provider.Synthesizer = (*Synthesizer)(nil)

var ErrMissingToken = errors.New("elevenlabs: api key required")

type Synthesizer struct {
	*Config
}

func NewSynthesizer(options ...Option) (*Synthesizer, error) {
	cfg := newConfig(options...)

	if cfg.token == "" {
		return nil, ErrMissingToken
	}

	return &Synthesizer{
		Config: cfg,
	}, nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type speechRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`

	VoiceSettings voiceSettings `json:"voice_settings"`
}

func (s *Synthesizer) Synthesize(ctx context.Context, content string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	if options == nil {
		options = new(provider.SynthesizeOptions)
	}

	voice := s.voice
	model := s.model

	if options.Voice != "" {
		voice = options.Voice
	}

	if options.Model != "" {
		model = options.Model
	}

	body := speechRequest{
		Text:    content,
		ModelID: model,

		VoiceSettings: voiceSettings{
			Stability:       DefaultStability,
			SimilarityBoost: DefaultSimilarityBoost,
		},
	}

	if options.Stability != nil {
		body.VoiceSettings.Stability = *options.Stability
	}

	if options.SimilarityBoost != nil {
		body.VoiceSettings.SimilarityBoost = *options.SimilarityBoost
	}

	var data bytes.Buffer

	if err := json.NewEncoder(&data).Encode(body); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+"text-to-speech/"+url.PathEscape(voice), &data)

	if err != nil {
		return nil, err
	}

	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	audio, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")

	if contentType == "" {
		contentType = "audio/mpeg"
	}

	return &provider.Synthesis{
		ID:    uuid.NewString(),
		Model: model,

		Content:     audio,
		ContentType: contentType,
	}, nil
}
