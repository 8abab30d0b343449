package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/adrianliechti/t101/pkg/provider"
)

type Client struct {
	Health HealthService
	Voices VoiceService

	Chat           ChatService
	Speech         SpeechService
	Transcriptions TranscriptionService

	Cache CacheService
}

type RequestConfig struct {
	URL    string
	APIKey string

	Client *http.Client
}

type RequestOption func(*RequestConfig)

func WithURL(url string) RequestOption {
	return func(c *RequestConfig) {
		c.URL = strings.TrimRight(url, "/")
	}
}

func WithAPIKey(key string) RequestOption {
	return func(c *RequestConfig) {
		c.APIKey = key
	}
}

func WithClient(client *http.Client) RequestOption {
	return func(c *RequestConfig) {
		c.Client = client
	}
}

// New returns a client for the server at url. The default HTTP client keeps
// cookies so chat requests share one conversation.
func New(url string, opts ...RequestOption) *Client {
	jar, _ := cookiejar.New(nil)

	opts = append([]RequestOption{
		WithClient(&http.Client{
			Jar:     jar,
			Timeout: 90 * time.Second,
		}),
	}, opts...)

	opts = append(opts, WithURL(url))

	return &Client{
		Health: NewHealthService(opts...),
		Voices: NewVoiceService(opts...),

		Chat:           NewChatService(opts...),
		Speech:         NewSpeechService(opts...),
		Transcriptions: NewTranscriptionService(opts...),

		Cache: NewCacheService(opts...),
	}
}

func newRequestConfig(opts ...RequestOption) *RequestConfig {
	c := &RequestConfig{
		Client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *RequestConfig) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL+path, body)

	if err != nil {
		return nil, err
	}

	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	return req, nil
}

func (c *RequestConfig) newJsonRequest(ctx context.Context, method, path string, v any) (*http.Request, error) {
	var body io.Reader

	if v != nil {
		data, err := json.Marshal(v)

		if err != nil {
			return nil, err
		}

		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)

	if err != nil {
		return nil, err
	}

	if v != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do sends req and decodes a JSON answer into v.
func (c *RequestConfig) do(req *http.Request, v any) error {
	resp, err := c.Client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return convertError(resp)
	}

	if v == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func convertError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	message := strings.TrimSpace(string(data))

	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	return &provider.APIError{
		StatusCode: resp.StatusCode,
		Message:    message,

		Provider: "t101",
	}
}
