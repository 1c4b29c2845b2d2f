package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter calls hosted OpenAI models.
type OpenAIAdapter struct {
	apiKey string
}

// NewOpenAIAdapter creates an OpenAI adapter.
func NewOpenAIAdapter(apiKey string) *OpenAIAdapter {
	return &OpenAIAdapter{apiKey: apiKey}
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Call sends a prompt to OpenAI and returns the response text.
func (a *OpenAIAdapter) Call(ctx context.Context, model, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", &ConfigError{Provider: a.Name(), Reason: "OPENAI_API_KEY is not configured"}
	}

	client := openai.NewClient(option.WithAPIKey(a.apiKey))
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(modelTag(model)),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(4096),
	})
	if err != nil {
		return "", &CallError{Provider: a.Name(), Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &CallError{Provider: a.Name(), Err: fmt.Errorf("no choices returned")}
	}

	return resp.Choices[0].Message.Content, nil
}
