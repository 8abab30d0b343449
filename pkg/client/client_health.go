package client

import (
	"context"
	"net/http"
)

type HealthService struct {
	Options []RequestOption
}

func NewHealthService(opts ...RequestOption) HealthService {
	return HealthService{
		Options: opts,
	}
}

type Health struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`

	Services struct {
		OpenAI     bool `json:"openai"`
		ElevenLabs bool `json:"elevenlabs"`
	} `json:"services"`
}

func (r *HealthService) Get(ctx context.Context, opts ...RequestOption) (*Health, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil)

	if err != nil {
		return nil, err
	}

	var result Health

	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}
