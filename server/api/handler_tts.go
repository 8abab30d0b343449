package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/adrianliechti/t101/pkg/cache"
	"github.com/adrianliechti/t101/pkg/provider"
	"github.com/adrianliechti/t101/pkg/provider/elevenlabs"
)

const maxSpeechLength = 5000

type SpeechRequest struct {
	Text string `json:"text"`

	VoiceID string `json:"voiceId,omitempty"`
	ModelID string `json:"modelId,omitempty"`

	Stability       *float64 `json:"stability,omitempty"`
	SimilarityBoost *float64 `json:"similarityBoost,omitempty"`
}

// normalize fills defaults so equivalent requests share one cache entry.
func (h *Handler) normalize(req SpeechRequest) (cache.Request, error) {
	result := cache.Request{
		Text: strings.TrimSpace(req.Text),

		VoiceID: strings.TrimSpace(req.VoiceID),
		ModelID: strings.TrimSpace(req.ModelID),

		Stability:       elevenlabs.DefaultStability,
		SimilarityBoost: elevenlabs.DefaultSimilarityBoost,
	}

	if result.Text == "" {
		return result, ValidationError("text is required", nil)
	}

	if utf8.RuneCountInString(result.Text) > maxSpeechLength {
		return result, ValidationError("text must not exceed 5000 characters", nil)
	}

	if result.VoiceID == "" {
		result.VoiceID = h.ElevenLabsVoice
	}

	if result.ModelID == "" {
		result.ModelID = h.ElevenLabsModel
	}

	if req.Stability != nil {
		if *req.Stability < 0 || *req.Stability > 1 {
			return result, ValidationError("stability must be between 0 and 1", nil)
		}

		result.Stability = *req.Stability
	}

	if req.SimilarityBoost != nil {
		if *req.SimilarityBoost < 0 || *req.SimilarityBoost > 1 {
			return result, ValidationError("similarityBoost must be between 0 and 1", nil)
		}

		result.SimilarityBoost = *req.SimilarityBoost
	}

	return result, nil
}

func (h *Handler) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest

	if err := readJson(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	normalized, err := h.normalize(req)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	key := cache.Key(normalized)

	if h.Cache != nil {
		data, ok, err := h.Cache.Get(key)

		if err != nil {
			h.logger.Warn("speech cache read failed", "key", key, "error", err)
		}

		if ok {
			writeAudio(w, "HIT", data)
			return
		}
	}

	p, err := h.Synthesizer()

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	synthesis, err := p.Synthesize(r.Context(), normalized.Text, &provider.SynthesizeOptions{
		Voice: normalized.VoiceID,
		Model: normalized.ModelID,

		Stability:       &normalized.Stability,
		SimilarityBoost: &normalized.SimilarityBoost,
	})

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Put(key, synthesis.Content); err != nil {
			h.logger.Warn("speech cache write failed", "key", key, "error", err)
		}
	}

	writeAudio(w, "MISS", synthesis.Content)
}

func writeAudio(w http.ResponseWriter, cacheStatus string, data []byte) {
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("X-Cache", cacheStatus)

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
