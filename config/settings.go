package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var ErrMissingRequired = errors.New("missing required configuration")

// Settings is read from the environment and optionally overlaid by a YAML file.
type Settings struct {
	Env string `env:"GO_ENV" envDefault:"development" yaml:"env"`

	Host string `env:"HOST" envDefault:"0.0.0.0" yaml:"host"`
	Port int    `env:"PORT" envDefault:"3000" yaml:"port"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:"," yaml:"cors_origins"`

	APIKey        string `env:"API_KEY" yaml:"api_key"`
	SessionSecret string `env:"SESSION_SECRET" yaml:"session_secret"`

	ChatProvider string `env:"CHAT_PROVIDER" envDefault:"openai" yaml:"chat_provider"`

	OpenAIURL    string `env:"OPENAI_BASE_URL" yaml:"openai_url"`
	OpenAIKey    string `env:"OPENAI_API_KEY" yaml:"openai_api_key"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini" yaml:"openai_model"`
	WhisperModel string `env:"WHISPER_MODEL" envDefault:"whisper-1" yaml:"whisper_model"`

	AnthropicKey   string `env:"ANTHROPIC_API_KEY" yaml:"anthropic_api_key"`
	AnthropicModel string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-haiku-latest" yaml:"anthropic_model"`

	ElevenLabsURL   string `env:"ELEVEN_LABS_BASE_URL" yaml:"elevenlabs_url"`
	ElevenLabsKey   string `env:"ELEVEN_LABS_API_KEY" yaml:"elevenlabs_api_key"`
	ElevenLabsVoice string `env:"ELEVEN_LABS_DEFAULT_VOICE" envDefault:"21m00Tcm4TlvDq8ikWAM" yaml:"elevenlabs_voice"`
	ElevenLabsModel string `env:"ELEVEN_LABS_MODEL" envDefault:"eleven_monolingual_v1" yaml:"elevenlabs_model"`

	CacheDir         string `env:"CACHE_DIR" envDefault:"cache/speech" yaml:"cache_dir"`
	CacheCompression int    `env:"CACHE_COMPRESSION" envDefault:"0" yaml:"cache_compression"`

	LogDir           string `env:"LOG_DIR" envDefault:"logs" yaml:"log_dir"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info" yaml:"log_level"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"14" yaml:"log_retention_days"`

	RateLimitWindowMS int `env:"RATE_LIMIT_WINDOW_MS" envDefault:"900000" yaml:"rate_limit_window_ms"`
	RateLimitMax      int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100" yaml:"rate_limit_max"`

	TTSRateLimitWindowMS int `env:"TTS_RATE_LIMIT_WINDOW_MS" envDefault:"60000" yaml:"tts_rate_limit_window_ms"`
	TTSRateLimitMax      int `env:"TTS_RATE_LIMIT_MAX" envDefault:"10" yaml:"tts_rate_limit_max"`

	ChatRateLimitWindowMS int `env:"CHAT_RATE_LIMIT_WINDOW_MS" envDefault:"60000" yaml:"chat_rate_limit_window_ms"`
	ChatRateLimitMax      int `env:"CHAT_RATE_LIMIT_MAX" envDefault:"20" yaml:"chat_rate_limit_max"`

	TranscribeRateLimitWindowMS int `env:"TRANSCRIBE_RATE_LIMIT_WINDOW_MS" envDefault:"60000" yaml:"transcribe_rate_limit_window_ms"`
	TranscribeRateLimitMax      int `env:"TRANSCRIBE_RATE_LIMIT_MAX" envDefault:"10" yaml:"transcribe_rate_limit_max"`

	UpstreamRPS int `env:"UPSTREAM_RPS" yaml:"upstream_rps"`
}

func (s *Settings) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

func (s *Settings) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *Settings) Level() slog.Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

func (s *Settings) LogRetention() time.Duration {
	return time.Duration(s.LogRetentionDays) * 24 * time.Hour
}

// Validate checks settings that must be present in production.
func (s *Settings) Validate() error {
	if !s.IsProduction() {
		return nil
	}

	var missing []string

	if s.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if s.ElevenLabsKey == "" {
		missing = append(missing, "ELEVEN_LABS_API_KEY")
	}

	if s.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	return nil
}

func milliseconds(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
