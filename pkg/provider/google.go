package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GoogleAdapter calls hosted Gemini models.
type GoogleAdapter struct {
	apiKey string
}

// NewGoogleAdapter creates a Google Gemini adapter.
func NewGoogleAdapter(apiKey string) *GoogleAdapter {
	return &GoogleAdapter{apiKey: apiKey}
}

// Name returns the adapter identifier.
func (a *GoogleAdapter) Name() string {
	return "google"
}

// Call sends a prompt to Gemini and returns the response text.
func (a *GoogleAdapter) Call(ctx context.Context, model, prompt string) (string, error) {
	if a.apiKey == "" {
		return "", &ConfigError{Provider: a.Name(), Reason: "GOOGLE_API_KEY is not configured"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &CallError{Provider: a.Name(), Err: fmt.Errorf("failed to create client: %w", err)}
	}

	resp, err := client.Models.GenerateContent(ctx, modelTag(model), genai.Text(prompt), nil)
	if err != nil {
		return "", &CallError{Provider: a.Name(), Err: err}
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", &CallError{Provider: a.Name(), Err: fmt.Errorf("no candidates returned")}
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	return content, nil
}
