package static

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/adrianliechti/t101/pkg/auth"
)

const HeaderName = "X-API-Key"

var _ auth.Provider = (*Provider)(nil)

type Provider struct {
	key string
}

// New returns a provider comparing the X-API-Key header with key.
// An empty key disables the check.
func New(key string) (*Provider, error) {
	return &Provider{
		key: key,
	}, nil
}

func (p *Provider) Authenticate(ctx context.Context, r *http.Request) (context.Context, error) {
	if p.key == "" {
		return ctx, nil
	}

	key := strings.TrimSpace(r.Header.Get(HeaderName))

	if key == "" {
		return ctx, auth.ErrMissingCredentials
	}

	if subtle.ConstantTimeCompare([]byte(key), []byte(p.key)) != 1 {
		return ctx, auth.ErrInvalidCredentials
	}

	ctx = context.WithValue(ctx, auth.ClientContextKey, fingerprint(key))

	return ctx, nil
}

// fingerprint identifies a client without keeping the raw key around.
func fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key:" + hex.EncodeToString(sum[:8])
}
