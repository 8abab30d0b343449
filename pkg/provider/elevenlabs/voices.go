package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adrianliechti/t101/pkg/provider"
)

var _ provider.VoiceLister = (*VoiceLister)(nil)

type VoiceLister struct {
	*Config
}

func NewVoiceLister(options ...Option) (*VoiceLister, error) {
	cfg := newConfig(options...)

	if cfg.token == "" {
		return nil, ErrMissingToken
	}

	return &VoiceLister{
		Config: cfg,
	}, nil
}

type voiceList struct {
	Voices []struct {
		VoiceID string `json:"voice_id"`
		Name    string `json:"name"`

		Category    string `json:"category"`
		Description string `json:"description"`

		PreviewURL string `json:"preview_url"`
	} `json:"voices"`
}

func (l *VoiceLister) Voices(ctx context.Context) ([]provider.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url+"voices", nil)

	if err != nil {
		return nil, err
	}

	l.setHeaders(req)

	resp, err := l.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp)
	}

	var list voiceList

	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	result := make([]provider.Voice, 0, len(list.Voices))

	for _, v := range list.Voices {
		result = append(result, provider.Voice{
			ID:   v.VoiceID,
			Name: v.Name,

			Category:    v.Category,
			Description: v.Description,

			PreviewURL: v.PreviewURL,
		})
	}

	return result, nil
}
