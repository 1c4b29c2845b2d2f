package router

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/modelgate/pkg/config"
)

// ErrNoDefaultTask is returned when no keyword matches and the routing
// config has no usable default task.
var ErrNoDefaultTask = fmt.Errorf("no default task configured")

// KeywordRouter maps free-text prompts to configured tasks by keyword
// matching. Declaration order of tasks and keywords is authoritative:
// the first task with any matching keyword wins regardless of match length.
type KeywordRouter struct {
	config *config.RoutingConfig
	logger *zap.Logger
}

// NewKeywordRouter creates a keyword router over a routing config.
func NewKeywordRouter(cfg *config.RoutingConfig, logger *zap.Logger) *KeywordRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeywordRouter{config: cfg, logger: logger}
}

// RouteTask returns the task config for a prompt. When no keyword matches,
// the configured default task is returned; a missing or dangling default is
// a configuration error.
func (r *KeywordRouter) RouteTask(prompt string) (config.TaskConfig, error) {
	promptLower := strings.ToLower(prompt)

	for _, task := range r.config.Tasks {
		for _, keyword := range task.Keywords {
			if strings.Contains(promptLower, strings.ToLower(keyword)) {
				r.logger.Debug("keyword matched",
					zap.String("task", task.Name),
					zap.String("keyword", keyword))
				return task, nil
			}
		}
	}

	if r.config.DefaultTask == "" {
		return config.TaskConfig{}, ErrNoDefaultTask
	}
	task, ok := r.config.Task(r.config.DefaultTask)
	if !ok {
		return config.TaskConfig{}, fmt.Errorf("%w: default task %q is not defined",
			ErrNoDefaultTask, r.config.DefaultTask)
	}
	r.logger.Debug("no keyword matched, using default task",
		zap.String("task", task.Name))
	return task, nil
}

// Chain returns the fallback chain for a task name. A task with an empty
// chain falls back to the default task's chain; a chain is never returned
// empty.
func (r *KeywordRouter) Chain(taskName string) ([]string, error) {
	if task, ok := r.config.Task(taskName); ok && len(task.Models) > 0 {
		return task.Models, nil
	}
	if r.config.DefaultTask == "" {
		return nil, fmt.Errorf("task %q has no model chain and %w", taskName, ErrNoDefaultTask)
	}
	task, ok := r.config.Task(r.config.DefaultTask)
	if !ok || len(task.Models) == 0 {
		return nil, fmt.Errorf("task %q has no model chain and default task %q has none either",
			taskName, r.config.DefaultTask)
	}
	return task.Models, nil
}
