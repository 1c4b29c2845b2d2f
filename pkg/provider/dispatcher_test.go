package provider

import (
	"context"
	"testing"

	"github.com/zen-systems/modelgate/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		AnthropicAPIKey: "ant-key",
		OpenAIAPIKey:    "oai-key",
		DeepSeekAPIKey:  "ds-key",
		GoogleAPIKey:    "g-key",
	}
}

func TestDispatcherResolve(t *testing.T) {
	d := NewDispatcher(testConfig(), nil)

	tests := []struct {
		model    string
		resolved bool
	}{
		{"ollama/codellama:7b-instruct", true},
		{"openai/gpt-5.2-instant", true},
		{"anthropic/claude-sonnet-4-20250514", true},
		{"deepseek/deepseek-coder", true},
		{"google/gemini-2.0-pro", true},
		{"cohere/command-r", false},
		{"no-prefix-model", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			call, ok := d.Resolve(tt.model)
			if ok != tt.resolved {
				t.Fatalf("Resolve(%q) = %v, want %v", tt.model, ok, tt.resolved)
			}
			if ok && call == nil {
				t.Fatal("resolved but call function is nil")
			}
		})
	}
}

func TestMissingCredentialIsConfigError(t *testing.T) {
	d := NewDispatcher(&config.Config{}, nil)

	for _, model := range []string{
		"openai/gpt-5.2-instant",
		"anthropic/claude-sonnet-4-20250514",
		"deepseek/deepseek-coder",
		"google/gemini-2.0-pro",
	} {
		t.Run(model, func(t *testing.T) {
			call, ok := d.Resolve(model)
			if !ok {
				t.Fatal("adapter must resolve even without a credential")
			}
			_, err := call(context.Background(), model, "hi")
			if err == nil {
				t.Fatal("expected error for missing credential")
			}
			if !IsConfigError(err) {
				t.Fatalf("expected ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestModelTag(t *testing.T) {
	if got := modelTag("ollama/codellama:7b-instruct"); got != "codellama:7b-instruct" {
		t.Fatalf("modelTag = %q", got)
	}
	if got := modelTag("bare-model"); got != "bare-model" {
		t.Fatalf("modelTag = %q", got)
	}
}
