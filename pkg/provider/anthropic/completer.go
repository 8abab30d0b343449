package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/adrianliechti/t101/pkg/provider"

	"github.com/anthropics/anthropic-sdk-go"
)

var _ provider.Completer = (*Completer)(nil)

const defaultMaxTokens = 1024

type Completer struct {
	*Config
	messages anthropic.MessageService
}

func NewCompleter(url, model string, options ...Option) (*Completer, error) {
	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	return &Completer{
		Config:   cfg,
		messages: anthropic.NewMessageService(cfg.Options()...),
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req := c.convertMessageRequest(messages, options)

	message, err := c.messages.New(ctx, req)

	if err != nil {
		return nil, convertError(err)
	}

	var parts []string

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}

	result := &provider.Completion{
		ID:    message.ID,
		Model: string(message.Model),

		Reason: provider.CompletionReasonStop,

		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,

			Content: []provider.Content{
				provider.TextContent(strings.Join(parts, "")),
			},
		},

		Usage: &provider.Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
		},
	}

	if message.StopReason == anthropic.StopReasonMaxTokens {
		result.Reason = provider.CompletionReasonLength
	}

	return result, nil
}

func (c *Completer) convertMessageRequest(input []provider.Message, options *provider.CompleteOptions) anthropic.MessageNewParams {
	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: defaultMaxTokens,
	}

	if options.MaxTokens != nil {
		req.MaxTokens = int64(*options.MaxTokens)
	}

	if options.Temperature != nil {
		req.Temperature = anthropic.Float(float64(*options.Temperature))
	}

	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, m := range input {
		text := m.Text()

		switch m.Role {
		case provider.MessageRoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: text})

		case provider.MessageRoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))

		case provider.MessageRoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		}
	}

	if len(system) > 0 {
		req.System = system
	}

	req.Messages = messages

	return req
}

func convertError(err error) error {
	var apierr *anthropic.Error

	if errors.As(err, &apierr) {
		return &provider.APIError{
			StatusCode: apierr.StatusCode,
			Message:    http.StatusText(apierr.StatusCode),

			Provider: "anthropic",
		}
	}

	return err
}
