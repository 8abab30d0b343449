package config

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/adrianliechti/t101/pkg/limiter"
	"github.com/adrianliechti/t101/pkg/otel"
	"github.com/adrianliechti/t101/pkg/provider"
	"github.com/adrianliechti/t101/pkg/provider/anthropic"
	"github.com/adrianliechti/t101/pkg/provider/elevenlabs"
	"github.com/adrianliechti/t101/pkg/provider/openai"
)

// UpstreamTimeout bounds every call to a third-party API.
const UpstreamTimeout = 60 * time.Second

var (
	ErrCompleterNotConfigured   = errors.New("chat completion not configured")
	ErrSynthesizerNotConfigured = errors.New("text-to-speech not configured")
	ErrTranscriberNotConfigured = errors.New("transcription not configured")
)

func (c *Config) Completer() (provider.Completer, error) {
	if c.completer == nil {
		return nil, ErrCompleterNotConfigured
	}

	return c.completer, nil
}

func (c *Config) Synthesizer() (provider.Synthesizer, error) {
	if c.synthesizer == nil {
		return nil, ErrSynthesizerNotConfigured
	}

	return c.synthesizer, nil
}

func (c *Config) Transcriber() (provider.Transcriber, error) {
	if c.transcriber == nil {
		return nil, ErrTranscriberNotConfigured
	}

	return c.transcriber, nil
}

func (c *Config) Voices() (provider.VoiceLister, error) {
	if c.voices == nil {
		return nil, ErrSynthesizerNotConfigured
	}

	return c.voices, nil
}

// RegisterCompleter replaces the chat completer; used by tests and alternative setups.
func (c *Config) RegisterCompleter(p provider.Completer) {
	c.completer = p
}

func (c *Config) RegisterSynthesizer(p provider.Synthesizer) {
	c.synthesizer = p
}

func (c *Config) RegisterTranscriber(p provider.Transcriber) {
	c.transcriber = p
}

func (c *Config) RegisterVoices(p provider.VoiceLister) {
	c.voices = p
}

func (c *Config) registerProviders() error {
	client := &http.Client{
		Timeout: UpstreamTimeout,
	}

	limit := createLimiter(c.UpstreamRPS)

	completer, name, model, err := c.createCompleter(client)

	if err != nil {
		return err
	}

	if completer != nil {
		c.completer = limiter.NewCompleter(limit, otel.NewCompleter(name, model, completer))
	}

	if c.OpenAIKey != "" {
		transcriber, err := openai.NewTranscriber(c.OpenAIURL, c.WhisperModel, openai.WithToken(c.OpenAIKey), openai.WithClient(client))

		if err != nil {
			return err
		}

		c.transcriber = limiter.NewTranscriber(limit, otel.NewTranscriber("openai", c.WhisperModel, transcriber))
	}

	if c.ElevenLabsKey != "" {
		options := []elevenlabs.Option{
			elevenlabs.WithToken(c.ElevenLabsKey),
			elevenlabs.WithVoice(c.ElevenLabsVoice),
			elevenlabs.WithModel(c.ElevenLabsModel),
			elevenlabs.WithClient(client),
		}

		if c.ElevenLabsURL != "" {
			options = append(options, elevenlabs.WithURL(c.ElevenLabsURL))
		}

		synthesizer, err := elevenlabs.NewSynthesizer(options...)

		if err != nil {
			return err
		}

		voices, err := elevenlabs.NewVoiceLister(options...)

		if err != nil {
			return err
		}

		c.synthesizer = limiter.NewSynthesizer(limit, otel.NewSynthesizer("elevenlabs", c.ElevenLabsModel, synthesizer))
		c.voices = voices
	}

	return nil
}

func (c *Config) createCompleter(client *http.Client) (provider.Completer, string, string, error) {
	switch strings.ToLower(c.ChatProvider) {
	case "anthropic":
		if c.AnthropicKey == "" {
			return nil, "", "", errors.New("ANTHROPIC_API_KEY is required for the anthropic chat provider")
		}

		p, err := anthropic.NewCompleter("", c.AnthropicModel, anthropic.WithToken(c.AnthropicKey), anthropic.WithClient(client))
		return p, "anthropic", c.AnthropicModel, err

	case "", "openai":
		if c.OpenAIKey == "" {
			return nil, "", "", nil
		}

		p, err := openai.NewCompleter(c.OpenAIURL, c.OpenAIModel, openai.WithToken(c.OpenAIKey), openai.WithClient(client))
		return p, "openai", c.OpenAIModel, err

	default:
		return nil, "", "", errors.New("invalid chat provider: " + c.ChatProvider)
	}
}
