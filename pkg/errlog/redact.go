package errlog

import (
	"encoding/json"
	"strings"
)

const Redacted = "[REDACTED]"

var sensitiveKeys = map[string]bool{
	"password": true,
	"token":    true,
	"apikey":   true,
	"api_key":  true,
	"secret":   true,
}

func IsSensitive(key string) bool {
	return sensitiveKeys[strings.ToLower(key)]
}

// Redact returns a copy of v with sensitive object fields replaced at any depth.
func Redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))

		for k, item := range val {
			if IsSensitive(k) {
				result[k] = Redacted
				continue
			}

			result[k] = Redact(item)
		}

		return result

	case []any:
		result := make([]any, len(val))

		for i, item := range val {
			result[i] = Redact(item)
		}

		return result
	}

	return v
}

// RedactJSON redacts a JSON document. Input that is not JSON is returned as a string unchanged.
func RedactJSON(data []byte) any {
	var v any

	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}

	return Redact(v)
}
