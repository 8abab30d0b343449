package elevenlabs

import (
	"net/http"
	"strings"
)

const (
	DefaultURL = "https://api.elevenlabs.io/v1/"

	DefaultVoice = "21m00Tcm4TlvDq8ikWAM"
	DefaultModel = "eleven_monolingual_v1"

	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.75
)

type Config struct {
	url string

	token string

	voice string
	model string

	client *http.Client
}

type Option func(*Config)

func WithURL(url string) Option {
	return func(c *Config) {
		c.url = url
	}
}

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

func WithVoice(voice string) Option {
	return func(c *Config) {
		c.voice = voice
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func newConfig(options ...Option) *Config {
	cfg := &Config{}

	for _, option := range options {
		option(cfg)
	}

	if cfg.url == "" {
		cfg.url = DefaultURL
	}

	if cfg.voice == "" {
		cfg.voice = DefaultVoice
	}

	if cfg.model == "" {
		cfg.model = DefaultModel
	}

	if cfg.client == nil {
		cfg.client = http.DefaultClient
	}

	cfg.url = strings.TrimRight(cfg.url, "/") + "/"

	return cfg
}

func (c *Config) setHeaders(req *http.Request) {
	req.Header.Set("xi-api-key", c.token)
}
