package otel

import (
	"context"

	"github.com/adrianliechti/t101/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var _ provider.Synthesizer = (*observableSynthesizer)(nil)

type Synthesizer interface {
	Observable
	provider.Synthesizer
}

type observableSynthesizer struct {
	model    string
	provider string

	synthesizer provider.Synthesizer

	characters metric.Int64Counter
}

func NewSynthesizer(provider, model string, p provider.Synthesizer) Synthesizer {
	characters, _ := otel.Meter(instrumentationName).Int64Counter("t101.synthesize.characters",
		metric.WithDescription("Characters sent to the speech synthesizer"),
	)

	return &observableSynthesizer{
		synthesizer: p,

		model:    model,
		provider: provider,

		characters: characters,
	}
}

func (p *observableSynthesizer) otelSetup() {
}

func (p *observableSynthesizer) Synthesize(ctx context.Context, content string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "synthesize "+p.model)
	defer span.End()

	span.SetAttributes(String("provider", p.provider), Int("characters", len(content)))

	result, err := p.synthesizer.Synthesize(ctx, content, options)
	recordError(span, err)

	if err == nil && p.characters != nil {
		p.characters.Add(ctx, int64(len(content)), metric.WithAttributes(String("provider", p.provider)))
	}

	return result, err
}
