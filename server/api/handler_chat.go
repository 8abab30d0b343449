package api

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/adrianliechti/t101/pkg/provider"
)

type ChatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest

	if err := readJson(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	response, err := h.chat(w, r, req.Message)

	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJson(w, chatResponse{
		Success:  true,
		Response: response,
	})
}

// chat answers message in character, using and extending the caller's session history.
func (h *Handler) chat(w http.ResponseWriter, r *http.Request, message string) (string, error) {
	message = strings.TrimSpace(message)

	if message == "" {
		return "", ValidationError("message is required", nil)
	}

	if utf8.RuneCountInString(message) > maxMessageLength {
		return "", ValidationError("message must not exceed 2000 characters", nil)
	}

	p, err := h.Completer()

	if err != nil {
		return "", err
	}

	messages := []provider.Message{
		provider.SystemMessage(Persona),
	}

	var sessionID string

	if h.Sessions != nil {
		s, err := h.Sessions.Load(w, r)

		if err != nil {
			return "", InternalError("failed to load session", err)
		}

		sessionID = s.ID
		messages = append(messages, h.Sessions.History(sessionID)...)
	}

	messages = append(messages, provider.UserMessage(message))

	maxTokens := chatMaxTokens
	temperature := chatTemperature

	completion, err := p.Complete(r.Context(), messages, &provider.CompleteOptions{
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})

	if err != nil {
		return "", err
	}

	var response string

	if completion.Message != nil {
		response = strings.TrimSpace(completion.Message.Text())
	}

	if response == "" {
		return "", InternalError("empty response from chat completion", nil)
	}

	if sessionID != "" {
		h.Sessions.Append(sessionID, provider.UserMessage(message), provider.AssistantMessage(response))
	}

	return response, nil
}
