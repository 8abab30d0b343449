package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adrianliechti/t101/config"
	"github.com/adrianliechti/t101/pkg/auth/static"
	"github.com/adrianliechti/t101/pkg/cache"
	"github.com/adrianliechti/t101/pkg/errlog"
	"github.com/adrianliechti/t101/pkg/limiter"
	"github.com/adrianliechti/t101/pkg/provider"
	"github.com/adrianliechti/t101/pkg/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type mockSynthesizer struct {
	calls atomic.Int32
	err   error
}

func (m *mockSynthesizer) Synthesize(ctx context.Context, input string, options *provider.SynthesizeOptions) (*provider.Synthesis, error) {
	m.calls.Add(1)

	if m.err != nil {
		return nil, m.err
	}

	return &provider.Synthesis{
		Content:     []byte("mp3:" + options.Voice + ":" + input),
		ContentType: "audio/mpeg",
	}, nil
}

type mockCompleter struct {
	calls atomic.Int32

	mu       sync.Mutex
	messages [][]provider.Message
}

func (m *mockCompleter) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	m.calls.Add(1)

	m.mu.Lock()
	m.messages = append(m.messages, messages)
	m.mu.Unlock()

	reply := provider.AssistantMessage("Affirmative: " + messages[len(messages)-1].Text())

	return &provider.Completion{
		Message: &reply,
	}, nil
}

type mockTranscriber struct {
	calls atomic.Int32
}

func (m *mockTranscriber) Transcribe(ctx context.Context, input provider.File, options *provider.TranscribeOptions) (*provider.Transcription, error) {
	m.calls.Add(1)
	return &provider.Transcription{Text: " where is john connor "}, nil
}

type mockVoices struct {
	calls atomic.Int32
}

func (m *mockVoices) Voices(ctx context.Context) ([]provider.Voice, error) {
	m.calls.Add(1)
	return []provider.Voice{{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel"}}, nil
}

type testEnv struct {
	server *httptest.Server
	now    time.Time

	synthesizer *mockSynthesizer
	completer   *mockCompleter
	transcriber *mockTranscriber
	voices      *mockVoices
}

func newTestEnv(t *testing.T, apiKey string) *testEnv {
	env := &testEnv{
		now: time.Date(2029, 8, 29, 2, 14, 0, 0, time.UTC),

		synthesizer: &mockSynthesizer{},
		completer:   &mockCompleter{},
		transcriber: &mockTranscriber{},
		voices:      &mockVoices{},
	}

	clock := limiter.WithClock(func() time.Time { return env.now })

	authorizer, err := static.New(apiKey)
	require.NoError(t, err)

	speechCache, err := cache.New(t.TempDir())
	require.NoError(t, err)

	sessions, err := session.New("test-secret")
	require.NoError(t, err)

	cfg := &config.Config{
		Settings: config.Settings{
			Env: "development",

			ElevenLabsVoice: "21m00Tcm4TlvDq8ikWAM",
			ElevenLabsModel: "eleven_monolingual_v1",
		},

		Authorizer: authorizer,

		Cache:    speechCache,
		Sessions: sessions,

		GlobalLimit:     limiter.NewWindow(15*time.Minute, 1000, clock),
		TTSLimit:        limiter.NewWindow(time.Minute, 100, clock),
		ChatLimit:       limiter.NewWindow(time.Minute, 100, clock),
		TranscribeLimit: limiter.NewWindow(time.Minute, 100, clock),
	}

	cfg.RegisterSynthesizer(env.synthesizer)
	cfg.RegisterCompleter(env.completer)
	cfg.RegisterTranscriber(env.transcriber)
	cfg.RegisterVoices(env.voices)

	env.server = newTestServer(t, cfg)

	return env
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	h, err := New(cfg)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Route("/api", h.Attach)

	s := httptest.NewServer(r)
	t.Cleanup(s.Close)

	return s
}

func (e *testEnv) do(t *testing.T, method, path string, body any, header http.Header) *http.Response {
	var reader *bytes.Reader

	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func readBody(t *testing.T, resp *http.Response) []byte {
	var buf bytes.Buffer

	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	return buf.Bytes()
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	var result errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.False(t, result.Success)
	require.Equal(t, resp.StatusCode, result.Error.Status)

	return result
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "secret-key")

	resp := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.Equal(t, "ok", result.Status)
	require.True(t, result.Services.OpenAI)
	require.True(t, result.Services.ElevenLabs)
}

func TestTTSTooLong(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: strings.Repeat("a", 5001)}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	result := decodeError(t, resp)
	require.Equal(t, CodeValidation, result.Error.Code)

	require.Equal(t, int32(0), env.synthesizer.calls.Load())
}

func TestTTSEmpty(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: "   "}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/tts", "{not json", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	require.Equal(t, int32(0), env.synthesizer.calls.Load())
}

func TestTTSCache(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/tts", `{"text":"I'll be back"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))
	require.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	first := readBody(t, resp)

	// same request with explicit defaults and another field order
	resp = env.do(t, http.MethodPost, "/api/tts", `{"stability":0.5,"voiceId":"21m00Tcm4TlvDq8ikWAM","text":"  I'll be back  ","similarityBoost":0.75}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	second := readBody(t, resp)

	require.Equal(t, first, second)
	require.Equal(t, int32(1), env.synthesizer.calls.Load())

	resp = env.do(t, http.MethodDelete, "/api/cache", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared cacheClearResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cleared))
	require.Equal(t, 1, cleared.Removed)

	resp = env.do(t, http.MethodPost, "/api/tts", `{"text":"I'll be back"}`, nil)
	require.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	require.Equal(t, int32(2), env.synthesizer.calls.Load())
}

func TestTTSUpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error

		status  int
		code    string
		message string
	}{
		{
			name:    "unauthorized",
			err:     &provider.APIError{StatusCode: 401, Message: "invalid api key", Provider: "elevenlabs"},
			status:  http.StatusUnauthorized,
			code:    CodeAuthentication,
			message: "authentication failed",
		},
		{
			name:    "rate limited",
			err:     &provider.APIError{StatusCode: 429, Provider: "elevenlabs"},
			status:  http.StatusTooManyRequests,
			code:    CodeRateLimit,
			message: "rate limit exceeded, retry later",
		},
		{
			name:    "passthrough",
			err:     &provider.APIError{StatusCode: 422, Message: "voice not found", Provider: "elevenlabs"},
			status:  http.StatusUnprocessableEntity,
			code:    CodeValidation,
			message: "voice not found",
		},
		{
			name:    "network",
			err:     errors.New("dial tcp: connection refused"),
			status:  http.StatusInternalServerError,
			code:    CodeInternal,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, "")
			env.synthesizer.err = tt.err

			resp := env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: "target acquired"}, nil)
			require.Equal(t, tt.status, resp.StatusCode)

			result := decodeError(t, resp)
			require.Equal(t, tt.code, result.Error.Code)
			require.Equal(t, tt.message, result.Error.Message)
			require.NotEmpty(t, result.Error.Details)
		})
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, "")

	authorizer, _ := static.New("")
	speechCache, _ := cache.New(t.TempDir())

	clock := limiter.WithClock(func() time.Time { return env.now })

	cfg := &config.Config{
		Settings:   config.Settings{Env: "development"},
		Authorizer: authorizer,
		Cache:      speechCache,
		TTSLimit:   limiter.NewWindow(time.Minute, 2, clock),
	}

	cfg.RegisterSynthesizer(env.synthesizer)
	env.server = newTestServer(t, cfg)

	for range 2 {
		resp := env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: "hello"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))
	}

	resp := env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: "hello"}, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "60", resp.Header.Get("Retry-After"))
	require.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	result := decodeError(t, resp)
	require.Equal(t, CodeRateLimit, result.Error.Code)

	env.now = env.now.Add(time.Minute + time.Second)

	resp = env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: "hello"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	env := newTestEnv(t, "secret-key")

	resp := env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "status"}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, CodeAuthentication, decodeError(t, resp).Error.Code)

	resp = env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "status"}, http.Header{"X-Api-Key": {"wrong"}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "status"}, http.Header{"X-Api-Key": {"secret-key"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Equal(t, int32(1), env.completer.calls.Load())
}

func TestChatSessionHistory(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "who are you"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.True(t, result.Success)
	require.Equal(t, "Affirmative: who are you", result.Response)

	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	header := http.Header{}

	for _, c := range cookies {
		header.Add("Cookie", (&http.Cookie{Name: c.Name, Value: c.Value}).String())
	}

	resp = env.do(t, http.MethodPost, "/api/chat", ChatRequest{Message: "what is your mission"}, header)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env.completer.mu.Lock()
	defer env.completer.mu.Unlock()

	require.Len(t, env.completer.messages, 2)
	require.Len(t, env.completer.messages[0], 2)

	second := env.completer.messages[1]
	require.Len(t, second, 4)
	require.Equal(t, provider.MessageRoleSystem, second[0].Role)
	require.Equal(t, "who are you", second[1].Text())
	require.Equal(t, provider.MessageRoleAssistant, second[2].Role)
}

func TestChatEmptyMessage(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodPost, "/api/chat", ChatRequest{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, int32(0), env.completer.calls.Load())
}

func TestNotConfigured(t *testing.T) {
	authorizer, _ := static.New("")

	s := newTestServer(t, &config.Config{
		Settings:   config.Settings{Env: "production"},
		Authorizer: authorizer,
	})

	resp, err := http.Post(s.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"hello"}`))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	result := decodeError(t, resp)
	require.Equal(t, CodeServiceUnavailable, result.Error.Code)
	require.Empty(t, result.Error.Details)
}

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)

		_, err = part.Write(content)
		require.NoError(t, err)
	}

	require.NoError(t, w.WriteField("language", "en"))
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, path, field, filename string, content []byte) *http.Response {
	body, contentType := multipartBody(t, field, filename, content)

	resp, err := http.Post(e.server.URL+path, contentType, body)
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestTranscribe(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.upload(t, "/api/transcribe", "audio", "recording.webm", []byte("webm-data"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result transcribeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.True(t, result.Success)
	require.Equal(t, "where is john connor", result.Text)

	resp = env.upload(t, "/api/transcribe", "file", "recording.wav", []byte("wav-data"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTranscribeValidation(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.upload(t, "/api/transcribe", "", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.upload(t, "/api/transcribe", "audio", "notes.txt", []byte("text"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, decodeError(t, resp).Error.Message, "unsupported audio format")

	resp = env.upload(t, "/api/transcribe", "audio", "huge.wav", make([]byte, maxAudioSize+1))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, decodeError(t, resp).Error.Message, "25MB")

	require.Equal(t, int32(0), env.transcriber.calls.Load())
}

func TestProcessAudio(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.upload(t, "/api/process-audio", "audio", "recording.ogg", []byte("ogg-data"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result processAudioResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.True(t, result.Success)
	require.Equal(t, "where is john connor", result.Transcription)
	require.Equal(t, "Affirmative: where is john connor", result.Response)
}

func TestVoicesMemoized(t *testing.T) {
	env := newTestEnv(t, "")

	for range 3 {
		resp := env.do(t, http.MethodGet, "/api/voices", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result voicesResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		require.Len(t, result.Voices, 1)
		require.Equal(t, "Rachel", result.Voices[0].Name)
	}

	require.Equal(t, int32(1), env.voices.calls.Load())
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.do(t, http.MethodGet, "/api/unknown", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, CodeNotFound, decodeError(t, resp).Error.Code)
}

func TestGlobalLimitKeyedByClient(t *testing.T) {
	env := newTestEnv(t, "")

	authorizer, _ := static.New("secret-key")
	clock := limiter.WithClock(func() time.Time { return env.now })

	cfg := &config.Config{
		Settings:    config.Settings{Env: "development"},
		Authorizer:  authorizer,
		GlobalLimit: limiter.NewWindow(15*time.Minute, 1, clock),
	}

	cfg.RegisterVoices(env.voices)
	env.server = newTestServer(t, cfg)

	key := http.Header{"X-Api-Key": {"secret-key"}}

	resp := env.do(t, http.MethodGet, "/api/voices", nil, key)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// same address, but the authenticated client has its own window
	resp = env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/voices", nil, key)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/voices", nil, http.Header{"X-Api-Key": {"wrong"}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChunkedJSONBody(t *testing.T) {
	env := newTestEnv(t, "")

	body := `{"text":"come with me if you want to live","padding":"` + strings.Repeat("x", maxCapturedBody+1024) + `"}`

	// MultiReader hides the length, so the request is sent chunked
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/tts", io.MultiReader(strings.NewReader(body)))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), env.synthesizer.calls.Load())
}

func TestErrorLogRedactsBody(t *testing.T) {
	env := newTestEnv(t, "")
	env.synthesizer.err = errors.New("dial tcp: connection refused")

	dir := t.TempDir()

	errorLog, err := errlog.New(dir, errlog.WithClock(func() time.Time { return env.now }))
	require.NoError(t, err)

	t.Cleanup(func() { errorLog.Close() })

	authorizer, _ := static.New("")
	speechCache, _ := cache.New(t.TempDir())

	cfg := &config.Config{
		Settings:   config.Settings{Env: "development"},
		Authorizer: authorizer,
		Cache:      speechCache,
		ErrorLog:   errorLog,
	}

	cfg.RegisterSynthesizer(env.synthesizer)
	env.server = newTestServer(t, cfg)

	resp := env.do(t, http.MethodPost, "/api/tts", `{"text":"skynet online","apiKey":"sk-live-123","options":{"Token":"tok-nested-456"}}`, nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	files, err := filepath.Glob(filepath.Join(dir, "errors-*.log"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	require.Contains(t, string(data), "skynet online")
	require.Contains(t, string(data), errlog.Redacted)
	require.NotContains(t, string(data), "sk-live-123")
	require.NotContains(t, string(data), "tok-nested-456")
}

func TestHealthCacheStats(t *testing.T) {
	env := newTestEnv(t, "")

	for range 2 {
		resp := env.do(t, http.MethodPost, "/api/tts", SpeechRequest{Text: "hasta la vista"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.NotNil(t, result.Cache)
	require.Equal(t, int64(1), result.Cache.Hits)
	require.Equal(t, int64(1), result.Cache.Misses)
}
