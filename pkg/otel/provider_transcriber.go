package otel

import (
	"context"

	"github.com/adrianliechti/t101/pkg/provider"

	"go.opentelemetry.io/otel"
)

var _ provider.Transcriber = (*observableTranscriber)(nil)

type Transcriber interface {
	Observable
	provider.Transcriber
}

type observableTranscriber struct {
	model    string
	provider string

	transcriber provider.Transcriber
}

func NewTranscriber(provider, model string, p provider.Transcriber) Transcriber {
	return &observableTranscriber{
		transcriber: p,

		model:    model,
		provider: provider,
	}
}

func (p *observableTranscriber) otelSetup() {
}

func (p *observableTranscriber) Transcribe(ctx context.Context, input provider.File, options *provider.TranscribeOptions) (*provider.Transcription, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "transcribe "+p.model)
	defer span.End()

	span.SetAttributes(String("provider", p.provider), String("file.type", input.ContentType))

	result, err := p.transcriber.Transcribe(ctx, input, options)
	recordError(span, err)

	return result, err
}
