package elevenlabs

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/adrianliechti/t101/pkg/provider"
)

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Detail json.RawMessage `json:"detail"`
	}

	message := strings.TrimSpace(string(data))

	if json.Unmarshal(data, &body) == nil && len(body.Detail) > 0 {
		var detail struct {
			Message string `json:"message"`
		}

		var text string

		if json.Unmarshal(body.Detail, &detail) == nil && detail.Message != "" {
			message = detail.Message
		} else if json.Unmarshal(body.Detail, &text) == nil && text != "" {
			message = text
		}
	}

	return &provider.APIError{
		StatusCode: resp.StatusCode,
		Message:    message,

		Provider: "elevenlabs",
	}
}
