package api

import (
	"net/http"
	"time"
)

type healthServices struct {
	OpenAI     bool `json:"openai"`
	ElevenLabs bool `json:"elevenlabs"`
}

type healthCache struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

type healthResponse struct {
	Status    string         `json:"status"`
	Uptime    float64        `json:"uptime"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`

	Cache *healthCache `json:"cache,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, chatErr := h.Completer()
	_, ttsErr := h.Synthesizer()

	status := "ok"

	if chatErr != nil || ttsErr != nil {
		status = "degraded"
	}

	result := healthResponse{
		Status:    status,
		Uptime:    time.Since(h.started).Seconds(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),

		Services: healthServices{
			OpenAI:     chatErr == nil,
			ElevenLabs: ttsErr == nil,
		},
	}

	if h.Cache != nil {
		stats := h.Cache.Stats()

		result.Cache = &healthCache{
			Hits:   stats.Hits,
			Misses: stats.Misses,
		}
	}

	writeJson(w, result)
}
