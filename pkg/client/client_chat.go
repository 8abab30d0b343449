package client

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
)

type ChatService struct {
	Options []RequestOption
}

func NewChatService(opts ...RequestOption) ChatService {
	return ChatService{
		Options: opts,
	}
}

// Send posts message to the character and returns its reply.
func (r *ChatService) Send(ctx context.Context, message string, opts ...RequestOption) (string, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	req, err := c.newJsonRequest(ctx, http.MethodPost, "/api/chat", map[string]string{
		"message": message,
	})

	if err != nil {
		return "", err
	}

	var result struct {
		Response string `json:"response"`
	}

	if err := c.do(req, &result); err != nil {
		return "", err
	}

	return result.Response, nil
}

type AudioReply struct {
	Transcription string `json:"transcription"`
	Response      string `json:"response"`
}

// SendAudio transcribes the recording on the server and answers it in one call.
func (r *ChatService) SendAudio(ctx context.Context, name string, audio io.Reader, opts ...RequestOption) (*AudioReply, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	body, contentType, err := multipartAudio(name, audio, "")

	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/process-audio", body)

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", contentType)

	var result AudioReply

	if err := c.do(req, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func multipartAudio(name string, audio io.Reader, language string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer

	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("audio", name)

	if err != nil {
		return nil, "", err
	}

	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", err
	}

	if language != "" {
		if err := w.WriteField("language", language); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
