package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx answer of an upstream provider.
type APIError struct {
	StatusCode int
	Message    string

	Provider string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode))
	}

	return fmt.Sprintf("%s: %d %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// AsAPIError returns the APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apierr *APIError

	if errors.As(err, &apierr) {
		return apierr, true
	}

	return nil, false
}
