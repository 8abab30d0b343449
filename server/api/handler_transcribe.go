package api

import (
	"net/http"
	"strings"

	"github.com/adrianliechti/t101/pkg/provider"
)

type transcribeResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

type processAudioResponse struct {
	Success bool `json:"success"`

	Transcription string `json:"transcription"`
	Response      string `json:"response"`
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	text, err := h.transcribe(w, r)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJson(w, transcribeResponse{
		Success: true,
		Text:    text,
	})
}

func (h *Handler) handleProcessAudio(w http.ResponseWriter, r *http.Request) {
	text, err := h.transcribe(w, r)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if text == "" {
		h.writeError(w, r, ValidationError("no speech detected in audio", nil))
		return
	}

	response, err := h.chat(w, r, text)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJson(w, processAudioResponse{
		Success: true,

		Transcription: text,
		Response:      response,
	})
}

func (h *Handler) transcribe(w http.ResponseWriter, r *http.Request) (string, error) {
	file, err := readAudio(w, r)

	if err != nil {
		return "", err
	}

	p, err := h.Transcriber()

	if err != nil {
		return "", err
	}

	options := &provider.TranscribeOptions{
		Language: r.FormValue("language"),
	}

	transcription, err := p.Transcribe(r.Context(), *file, options)

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(transcription.Text), nil
}
