package api

import (
	"bytes"
	"context"
	"io"
	"math"
	"mime"
	"net"
	"net/http"
	"strconv"

	"github.com/adrianliechti/t101/pkg/auth"
	"github.com/adrianliechti/t101/pkg/limiter"
)

type contextKey string

const bodyContextKey contextKey = "api.body"

// maxCapturedBody bounds the JSON body kept for error logging.
const maxCapturedBody = 1 << 20

// captureBody keeps a copy of small JSON request bodies so failures can be logged with them.
// Bodies of unknown length (chunked) pass through untouched.
func captureBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mediatype, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

		if r.Body == nil || mediatype != "application/json" || r.ContentLength < 0 || r.ContentLength > maxCapturedBody {
			next.ServeHTTP(w, r)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, r.ContentLength))
		r.Body.Close()

		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(data))

		ctx := context.WithValue(r.Context(), bodyContextKey, data)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestBody(ctx context.Context) []byte {
	data, _ := ctx.Value(bodyContextKey).([]byte)
	return data
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Authorizer == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx, err := h.Authorizer.Authenticate(r.Context(), r)

		if err != nil {
			h.writeError(w, r, AuthenticationError(err.Error(), nil))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limit applies a fixed-window limit keyed by API key or client address.
func (h *Handler) limit(window *limiter.Window) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if window == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := window.Allow(clientKey(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))

			if !result.Allowed {
				seconds := int(math.Ceil(result.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))

				h.writeError(w, r, RateLimitError("too many requests, please try again later", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	if client, ok := auth.Client(r.Context()); ok {
		return client
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)

	if err != nil {
		return r.RemoteAddr
	}

	return host
}
