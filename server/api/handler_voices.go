package api

import (
	"net/http"
	"time"

	"github.com/adrianliechti/t101/pkg/provider"
)

type Voice struct {
	ID   string `json:"voiceId"`
	Name string `json:"name"`

	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`

	PreviewURL string `json:"previewUrl,omitempty"`
}

type voicesResponse struct {
	Success bool    `json:"success"`
	Voices  []Voice `json:"voices"`
}

func (h *Handler) handleVoices(w http.ResponseWriter, r *http.Request) {
	voices, err := h.listVoices(r)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result := voicesResponse{
		Success: true,
		Voices:  make([]Voice, 0, len(voices)),
	}

	for _, v := range voices {
		result.Voices = append(result.Voices, Voice{
			ID:   v.ID,
			Name: v.Name,

			Category:    v.Category,
			Description: v.Description,

			PreviewURL: v.PreviewURL,
		})
	}

	writeJson(w, result)
}

// listVoices memoizes the upstream voice list.
func (h *Handler) listVoices(r *http.Request) ([]provider.Voice, error) {
	h.voicesMu.Lock()
	defer h.voicesMu.Unlock()

	if h.voices != nil && time.Since(h.voicesAt) < h.voicesTTL {
		return h.voices, nil
	}

	p, err := h.Voices()

	if err != nil {
		return nil, err
	}

	voices, err := p.Voices(r.Context())

	if err != nil {
		return nil, err
	}

	h.voices = voices
	h.voicesAt = time.Now()

	return voices, nil
}
