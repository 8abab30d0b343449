package client

import (
	"context"
	"net/http"
)

type CacheService struct {
	Options []RequestOption
}

func NewCacheService(opts ...RequestOption) CacheService {
	return CacheService{
		Options: opts,
	}
}

// Clear deletes all cached speech on the server and returns the number of removed entries.
func (r *CacheService) Clear(ctx context.Context, opts ...RequestOption) (int, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, err := c.newRequest(ctx, http.MethodDelete, "/api/cache", nil)

	if err != nil {
		return 0, err
	}

	var result struct {
		Removed int `json:"removed"`
	}

	if err := c.do(req, &result); err != nil {
		return 0, err
	}

	return result.Removed, nil
}
