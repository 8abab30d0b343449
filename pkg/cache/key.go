package cache

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
)

// Request is the normalized form of a speech request.
type Request struct {
	Text string

	VoiceID string
	ModelID string

	Stability       float64
	SimilarityBoost float64
}

// Key returns the file-safe cache key of r.
func Key(r Request) string {
	// encoding/json writes map keys in sorted order
	data, _ := json.Marshal(map[string]any{
		"text": r.Text,

		"voiceId": r.VoiceID,
		"modelId": r.ModelID,

		"stability":       r.Stability,
		"similarityBoost": r.SimilarityBoost,
	})

	sum := sha256.Sum256(data)

	return base64.RawURLEncoding.EncodeToString(sum[:])
}
