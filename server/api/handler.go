package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/adrianliechti/t101/config"
	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	*config.Config

	logger *slog.Logger
	errors *slog.Logger

	started time.Time

	voicesMu  sync.Mutex
	voices    []provider.Voice
	voicesAt  time.Time
	voicesTTL time.Duration
}

func New(cfg *config.Config) (*Handler, error) {
	h := &Handler{
		Config: cfg,

		logger: slog.Default().With("component", "api"),

		started: time.Now(),

		voicesTTL: 10 * time.Minute,
	}

	if cfg.ErrorLog != nil {
		h.errors = cfg.ErrorLog.Logger()
	}

	return h, nil
}

func (h *Handler) Attach(r chi.Router) {
	r.Use(captureBody)

	// health is unauthenticated and limited per client address
	r.With(h.limit(h.GlobalLimit)).Get("/health", h.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(h.authenticate)
		r.Use(h.limit(h.GlobalLimit))

		r.Get("/voices", h.handleVoices)

		r.With(h.limit(h.TTSLimit)).Post("/tts", h.handleTTS)
		r.With(h.limit(h.ChatLimit)).Post("/chat", h.handleChat)
		r.With(h.limit(h.TranscribeLimit)).Post("/transcribe", h.handleTranscribe)
		r.With(h.limit(h.TranscribeLimit), h.limit(h.ChatLimit)).Post("/process-audio", h.handleProcessAudio)

		r.Delete("/cache", h.handleCacheClear)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, NotFoundError("route not found", nil))
	})
}

func writeJson(w http.ResponseWriter, v any) {
	writeJsonStatus(w, http.StatusOK, v)
}

func writeJsonStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}
