package client

import (
	"bytes"
	"context"
	"net/http"

	"github.com/adrianliechti/t101/pkg/provider"
)

var _ provider.Transcriber = (*TranscriptionService)(nil)

type TranscriptionService struct {
	Options []RequestOption
}

func NewTranscriptionService(opts ...RequestOption) TranscriptionService {
	return TranscriptionService{
		Options: opts,
	}
}

type Transcription = provider.Transcription
type TranscribeOptions = provider.TranscribeOptions

// Transcribe sends a recording to the server's speech-to-text endpoint.
func (r *TranscriptionService) Transcribe(ctx context.Context, input provider.File, options *TranscribeOptions) (*Transcription, error) {
	c := newRequestConfig(r.Options...)

	if options == nil {
		options = new(TranscribeOptions)
	}

	body, contentType, err := multipartAudio(input.Name, bytes.NewReader(input.Content), options.Language)

	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/transcribe", body)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)

	var result struct {
		Text string `json:"text"`
	}

	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	return &Transcription{
		Language: options.Language,
		Text:     result.Text,
	}, nil
}
