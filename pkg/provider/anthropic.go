package provider

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter calls hosted Claude models.
type AnthropicAdapter struct {
	apiKey string
}

// NewAnthropicAdapter creates an Anthropic adapter.
func NewAnthropicAdapter(apiKey string) *AnthropicAdapter {
	return &AnthropicAdapter{apiKey: apiKey}
}

// Name returns the adapter identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Call sends a prompt to Claude and returns the response text.
func (a *AnthropicAdapter) Call(ctx context.Context, model, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", &ConfigError{Provider: a.Name(), Reason: "ANTHROPIC_API_KEY is not configured"}
	}

	client := anthropic.NewClient(option.WithAPIKey(a.apiKey))
	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelTag(model)),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &CallError{Provider: a.Name(), Err: err}
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return content, nil
}
