package client

import (
	"context"
	"net/http"

	"github.com/adrianliechti/t101/pkg/provider"
)

var _ provider.VoiceLister = (*VoiceService)(nil)

type VoiceService struct {
	Options []RequestOption
}

func NewVoiceService(opts ...RequestOption) VoiceService {
	return VoiceService{
		Options: opts,
	}
}

type Voice = provider.Voice

func (r *VoiceService) Voices(ctx context.Context) ([]Voice, error) {
	return r.List(ctx)
}

func (r *VoiceService) List(ctx context.Context, opts ...RequestOption) ([]Voice, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/voices", nil)

	if err != nil {
		return nil, err
	}

	var result struct {
		Voices []struct {
			ID   string `json:"voiceId"`
			Name string `json:"name"`

			Category    string `json:"category"`
			Description string `json:"description"`

			PreviewURL string `json:"previewUrl"`
		} `json:"voices"`
	}

	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	var voices []Voice

	for _, v := range result.Voices {
		voices = append(voices, Voice{
			ID:   v.ID,
			Name: v.Name,

			Category:    v.Category,
			Description: v.Description,

			PreviewURL: v.PreviewURL,
		})
	}

	return voices, nil
}
