package openai

import (
	"errors"

	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/openai/openai-go/v3"
)

func convertError(err error) error {
	var apierr *openai.Error

	if errors.As(err, &apierr) {
		message := apierr.Message

		if message == "" {
			message = apierr.Type
		}

		return &provider.APIError{
			StatusCode: apierr.StatusCode,
			Message:    message,

			Provider: "openai",
		}
	}

	return err
}
