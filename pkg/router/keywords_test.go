package router

import (
	"errors"
	"testing"

	"github.com/zen-systems/modelgate/pkg/config"
)

func keywordConfig() *config.RoutingConfig {
	return &config.RoutingConfig{
		Tasks: []config.TaskConfig{
			{
				Name:     "code_analysis",
				Keywords: []string{"code", "analyze"},
				Models:   []string{"ollama/codellama:7b-instruct"},
			},
			{
				// Overlaps with code_analysis on purpose: "analyze this code in
				// detail" matches both, and "code review" is a longer, more
				// specific phrase than "code".
				Name:     "review",
				Keywords: []string{"code review", "analyze this code in detail"},
				Models:   []string{"anthropic/claude-sonnet-4-20250514"},
			},
			{
				Name:     "general_chat",
				Keywords: []string{"hello"},
				Models:   []string{"ollama/llama3:8b", "openai/gpt-5.2-instant"},
			},
		},
		DefaultTask: "general_chat",
	}
}

func TestRouteTaskFirstDeclaredTaskWins(t *testing.T) {
	r := NewKeywordRouter(keywordConfig(), nil)

	tests := []struct {
		name     string
		prompt   string
		wantTask string
	}{
		{
			// Both tasks match; the earlier declaration wins even though the
			// later task's keyword is a longer match.
			name:     "overlapping keywords",
			prompt:   "Please do a code review of this module",
			wantTask: "code_analysis",
		},
		{
			name:     "longer phrase in later task still loses",
			prompt:   "analyze this code in detail",
			wantTask: "code_analysis",
		},
		{
			name:     "case insensitive",
			prompt:   "ANALYZE my data",
			wantTask: "code_analysis",
		},
		{
			name:     "no match falls back to default",
			prompt:   "what is the weather like",
			wantTask: "general_chat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := r.RouteTask(tt.prompt)
			if err != nil {
				t.Fatalf("route: %v", err)
			}
			if task.Name != tt.wantTask {
				t.Fatalf("expected task %q, got %q", tt.wantTask, task.Name)
			}
		})
	}
}

func TestRouteTaskMissingDefault(t *testing.T) {
	cfg := keywordConfig()
	cfg.DefaultTask = ""
	r := NewKeywordRouter(cfg, nil)

	if _, err := r.RouteTask("no keyword here"); !errors.Is(err, ErrNoDefaultTask) {
		t.Fatalf("expected ErrNoDefaultTask, got %v", err)
	}
}

func TestRouteTaskDanglingDefault(t *testing.T) {
	cfg := keywordConfig()
	cfg.DefaultTask = "missing"
	r := NewKeywordRouter(cfg, nil)

	if _, err := r.RouteTask("no keyword here"); !errors.Is(err, ErrNoDefaultTask) {
		t.Fatalf("expected ErrNoDefaultTask, got %v", err)
	}
}

func TestChainNeverEmpty(t *testing.T) {
	r := NewKeywordRouter(keywordConfig(), nil)

	chain, err := r.Chain("general_chat")
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 2 {
		t.Fatalf("expected 2 models, got %d", len(chain))
	}

	// Unknown task falls back to the default task's chain.
	chain, err = r.Chain("unknown_task")
	if err != nil {
		t.Fatalf("chain fallback: %v", err)
	}
	if len(chain) == 0 {
		t.Fatal("chain must never be empty")
	}
	if chain[0] != "ollama/llama3:8b" {
		t.Fatalf("expected default chain, got %v", chain)
	}
}

func TestChainNoDefaultConfigured(t *testing.T) {
	cfg := keywordConfig()
	cfg.DefaultTask = ""
	r := NewKeywordRouter(cfg, nil)

	if _, err := r.Chain("unknown_task"); err == nil {
		t.Fatal("expected configuration error, got nil")
	}
}
