package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"github.com/adrianliechti/t101/pkg/auth"
	"github.com/adrianliechti/t101/pkg/auth/static"
	"github.com/adrianliechti/t101/pkg/cache"
	"github.com/adrianliechti/t101/pkg/errlog"
	"github.com/adrianliechti/t101/pkg/limiter"
	"github.com/adrianliechti/t101/pkg/provider"
	"github.com/adrianliechti/t101/pkg/session"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

const DefaultFile = "t101.yaml"

type Config struct {
	Settings

	Authorizer auth.Provider

	Cache    *cache.Cache
	Sessions *session.Manager
	ErrorLog *errlog.Writer

	GlobalLimit     *limiter.Window
	TTSLimit        *limiter.Window
	ChatLimit       *limiter.Window
	TranscribeLimit *limiter.Window

	completer   provider.Completer
	synthesizer provider.Synthesizer
	transcriber provider.Transcriber
	voices      provider.VoiceLister
}

// Load reads .env, the environment and the optional YAML overlay at path
// without creating any components.
func Load(path string) (*Settings, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	s, err := env.ParseAs[Settings]()

	if err != nil {
		return nil, err
	}

	if err := parseFile(path, &s); err != nil {
		return nil, err
	}

	return &s, nil
}

// Parse loads the settings, validates them and creates all server components.
func Parse(path string) (*Config, error) {
	s, err := Load(path)

	if err != nil {
		return nil, err
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	c := &Config{
		Settings: *s,
	}

	if c.Authorizer, err = static.New(s.APIKey); err != nil {
		return nil, err
	}

	if c.Cache, err = cache.New(s.CacheDir, cache.WithCompression(s.CacheCompression)); err != nil {
		return nil, err
	}

	if c.Sessions, err = session.New(s.SessionSecret, session.WithSecureCookie(s.IsProduction())); err != nil {
		return nil, err
	}

	if c.ErrorLog, err = errlog.New(s.LogDir); err != nil {
		return nil, err
	}

	c.GlobalLimit = limiter.NewWindow(milliseconds(s.RateLimitWindowMS), s.RateLimitMax)
	c.TTSLimit = limiter.NewWindow(milliseconds(s.TTSRateLimitWindowMS), s.TTSRateLimitMax)
	c.ChatLimit = limiter.NewWindow(milliseconds(s.ChatRateLimitWindowMS), s.ChatRateLimitMax)
	c.TranscribeLimit = limiter.NewWindow(milliseconds(s.TranscribeRateLimitWindowMS), s.TranscribeRateLimitMax)

	if err := c.registerProviders(); err != nil {
		return nil, err
	}

	return c, nil
}

// Windows returns all rate-limit windows for periodic sweeping.
func (c *Config) Windows() []*limiter.Window {
	return []*limiter.Window{c.GlobalLimit, c.TTSLimit, c.ChatLimit, c.TranscribeLimit}
}

func parseFile(path string, s *Settings) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	data = []byte(os.ExpandEnv(string(data)))

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(s); err != nil {
		// empty document
		if errors.Is(err, io.EOF) {
			return nil
		}

		return err
	}

	return nil
}

func createLimiter(rps int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}

	return rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), rps)
}
