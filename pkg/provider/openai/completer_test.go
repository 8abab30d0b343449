package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var received struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}

		json.NewDecoder(r.Body).Decode(&received)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"finish_reason":"length","message":{"role":"assistant","content":"I'll be back."}}],"usage":{"prompt_tokens":12,"completion_tokens":4,"total_tokens":16}}`)
	}))

	defer s.Close()

	c, err := NewCompleter(s.URL+"/v1/", "gpt-4o-mini", WithToken("sk-test"))
	require.NoError(t, err)

	result, err := c.Complete(context.Background(), []provider.Message{
		provider.SystemMessage("You are the T-101."),
		provider.UserMessage("Will you return?"),
	}, nil)

	require.NoError(t, err)

	require.Equal(t, "I'll be back.", result.Message.Text())
	require.Equal(t, provider.CompletionReasonLength, result.Reason)
	require.Equal(t, 12, result.Usage.InputTokens)

	require.Equal(t, "gpt-4o-mini", received.Model)
	require.Len(t, received.Messages, 2)
	require.Equal(t, "system", received.Messages[0].Role)
}

func TestCompleteError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	}))

	defer s.Close()

	c, err := NewCompleter(s.URL+"/v1/", "gpt-4o-mini", WithToken("sk-wrong"))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil)

	apierr, ok := provider.AsAPIError(err)
	require.True(t, ok)
	require.True(t, apierr.IsUnauthorized())
	require.Equal(t, "openai", apierr.Provider)
}

func TestCompleteDoesNotRetry(t *testing.T) {
	for _, path := range []string{"/v1/", "/openai.azure.com/openai/"} {
		var calls atomic.Int32

		s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
		}))

		c, err := NewCompleter(s.URL+path, "gpt-4o-mini", WithToken("sk-test"))
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), []provider.Message{provider.UserMessage("hello")}, nil)
		s.Close()

		apierr, ok := provider.AsAPIError(err)
		require.True(t, ok, path)
		require.Equal(t, http.StatusInternalServerError, apierr.StatusCode, path)
		require.Equal(t, int32(1), calls.Load(), path)
	}
}

func TestIsAzure(t *testing.T) {
	require.True(t, isAzure("https://t101.openai.azure.com/openai/"))
	require.True(t, isAzure("https://t101.cognitiveservices.azure.com/"))
	require.False(t, isAzure("https://api.openai.com/v1/"))
}
