package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/adrianliechti/t101/config"
	"github.com/adrianliechti/t101/pkg/errlog"
	"github.com/adrianliechti/t101/pkg/provider"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeAuthentication     = "AUTHENTICATION_ERROR"
	CodeAuthorization      = "AUTHORIZATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimit          = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeUpstream           = "UPSTREAM_ERROR"
)

// Error is an error with an HTTP status and a stable code sent to clients.
type Error struct {
	Status  int
	Code    string
	Message string

	// Upstream marks failures reported by a third-party API.
	Upstream bool

	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func ValidationError(message string, cause error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: message, Cause: cause}
}

func AuthenticationError(message string, cause error) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeAuthentication, Message: message, Cause: cause}
}

func AuthorizationError(message string, cause error) *Error {
	return &Error{Status: http.StatusForbidden, Code: CodeAuthorization, Message: message, Cause: cause}
}

func NotFoundError(message string, cause error) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message, Cause: cause}
}

func RateLimitError(message string, cause error) *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimit, Message: message, Cause: cause}
}

func InternalError(message string, cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternal, Message: message, Cause: cause}
}

func ServiceUnavailableError(message string, cause error) *Error {
	return &Error{Status: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: message, Cause: cause}
}

// toError classifies err, translating upstream provider failures.
func toError(err error) *Error {
	var e *Error

	if errors.As(err, &e) {
		return e
	}

	if apierr, ok := provider.AsAPIError(err); ok {
		switch {
		case apierr.IsUnauthorized():
			e = AuthenticationError("authentication failed", err)

		case apierr.IsRateLimited():
			e = RateLimitError("rate limit exceeded, retry later", err)

		default:
			message := apierr.Message

			if message == "" {
				message = http.StatusText(apierr.StatusCode)
			}

			e = &Error{Status: apierr.StatusCode, Code: statusCode(apierr.StatusCode), Message: message, Cause: err}
		}

		e.Upstream = true

		return e
	}

	if errors.Is(err, config.ErrCompleterNotConfigured) ||
		errors.Is(err, config.ErrSynthesizerNotConfigured) ||
		errors.Is(err, config.ErrTranscriberNotConfigured) {
		return ServiceUnavailableError(err.Error(), err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Status: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: "upstream service unavailable", Upstream: true, Cause: err}
	}

	return InternalError("internal server error", err)
}

func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeAuthentication
	case http.StatusForbidden:
		return CodeAuthorization
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimit
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	}

	if status >= 500 {
		return CodeUpstream
	}

	return CodeValidation
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`

	Details string `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

// writeError formats every handler error the same way. Causes are only
// exposed outside production.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := toError(err)

	body := errorBody{
		Message: e.Message,
		Code:    e.Code,
		Status:  e.Status,
	}

	if !h.IsProduction() && e.Cause != nil {
		body.Details = e.Cause.Error()
	}

	if e.Status >= 500 || e.Upstream {
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", e.Status,
			"code", e.Code,
			"error", e.Error(),
		}

		if data := requestBody(r.Context()); len(data) > 0 {
			attrs = append(attrs, "body", errlog.RedactJSON(data))
		}

		h.logger.Error("request failed", attrs...)

		if h.errors != nil {
			h.errors.Error("request failed", attrs...)
		}
	}

	writeJsonStatus(w, e.Status, errorResponse{
		Success: false,
		Error:   body,
	})
}
