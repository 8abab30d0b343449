package auth

import (
	"context"
	"errors"
	"net/http"
)

type contextKey string

const (
	ClientContextKey contextKey = "auth.client"
)

var (
	ErrMissingCredentials = errors.New("missing api key")
	ErrInvalidCredentials = errors.New("invalid api key")
)

type Provider interface {
	Authenticate(ctx context.Context, r *http.Request) (context.Context, error)
}

// Client returns the authenticated client identity stored by a Provider, if any.
func Client(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(ClientContextKey).(string)
	return client, ok && client != ""
}
