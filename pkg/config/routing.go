package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RoutingConfig holds the task-to-model-chain routing configuration.
// Tasks is a sequence, not a map: the keyword router's first-match rule
// depends on declaration order.
type RoutingConfig struct {
	Tasks       []TaskConfig `yaml:"tasks"`
	DefaultTask string       `yaml:"default_task"`
	Retry       RetryConfig  `yaml:"retry,omitempty"`
}

// TaskConfig defines one task: its routing keywords and its ordered
// model chain. The first model in Models is attempted first.
type TaskConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"routing_keywords,omitempty"`
	Models   []string `yaml:"models"`
}

// RetryConfig defines per-model retry and timeout behavior.
type RetryConfig struct {
	MaxRetries   int `yaml:"max_retries,omitempty"`
	RetryDelayMs int `yaml:"retry_delay_ms,omitempty"`
	TimeoutSec   int `yaml:"timeout_sec,omitempty"`
}

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRoutingDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Task returns the task config with the given name.
func (c *RoutingConfig) Task(name string) (TaskConfig, bool) {
	for _, t := range c.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskConfig{}, false
}

// Validate checks the routing config for crash-worthy misconfiguration:
// unnamed tasks, empty model chains, or a dangling default task.
func (c *RoutingConfig) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("routing config defines no tasks")
	}
	seen := make(map[string]bool, len(c.Tasks))
	for i, task := range c.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task at index %d has no name", i)
		}
		if seen[task.Name] {
			return fmt.Errorf("duplicate task %q", task.Name)
		}
		seen[task.Name] = true
		if len(task.Models) == 0 {
			return fmt.Errorf("task %q has an empty model chain", task.Name)
		}
	}
	if c.DefaultTask != "" && !seen[c.DefaultTask] {
		return fmt.Errorf("default task %q is not defined", c.DefaultTask)
	}
	return nil
}

// DefaultRoutingConfig returns the default routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{
		Tasks: []TaskConfig{
			{
				Name:     "code_analysis",
				Keywords: []string{"analyze", "code review", "lint", "inspect"},
				Models: []string{
					"ollama/codellama:7b-instruct",
					"openai/gpt-5.2-codex",
					"anthropic/claude-sonnet-4-20250514",
				},
			},
			{
				Name:     "code_generation",
				Keywords: []string{"implement", "write a function", "generate code", "scaffold", "boilerplate"},
				Models: []string{
					"ollama/codellama:7b-instruct",
					"deepseek/deepseek-coder",
					"anthropic/claude-sonnet-4-20250514",
				},
			},
			{
				Name:     "debugging",
				Keywords: []string{"debug", "fix", "error", "bug", "failing", "stack trace"},
				Models: []string{
					"ollama/codellama:7b-instruct",
					"anthropic/claude-sonnet-4-20250514",
					"openai/gpt-5.2-thinking",
				},
			},
			{
				Name:     "documentation",
				Keywords: []string{"document", "docstring", "readme", "explain this code"},
				Models: []string{
					"ollama/llama3:8b",
					"openai/gpt-5.2-instant",
				},
			},
			{
				Name:     "image_analysis",
				Keywords: []string{"image", "picture", "screenshot", "diagram"},
				Models: []string{
					"ollama/llava:latest",
					"google/gemini-2.0-pro",
				},
			},
			{
				Name:     "general_chat",
				Keywords: []string{"hello", "chat", "talk"},
				Models: []string{
					"ollama/llama3:8b",
					"ollama/mistral:latest",
					"openai/gpt-5.2-instant",
					"anthropic/claude-sonnet-4-20250514",
				},
			},
		},
		DefaultTask: "general_chat",
	}

	applyRoutingDefaults(cfg)
	return cfg
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = 2
	}
	if cfg.Retry.RetryDelayMs == 0 {
		cfg.Retry.RetryDelayMs = 1000
	}
	if cfg.Retry.TimeoutSec == 0 {
		cfg.Retry.TimeoutSec = 60
	}
}
