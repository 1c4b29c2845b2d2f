package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zen-systems/modelgate/pkg/fallback"
	"github.com/zen-systems/modelgate/pkg/router"
)

// TaskAgent answers free-text prompts by keyword-routing them to a task
// and driving that task's fallback chain.
type TaskAgent struct {
	mu       sync.Mutex
	name     string
	router   *router.KeywordRouter
	executor *fallback.Executor
	status   Status
}

// NewTaskAgent creates a task agent over a keyword router and executor.
func NewTaskAgent(name string, kr *router.KeywordRouter, exec *fallback.Executor) *TaskAgent {
	return &TaskAgent{
		name:     name,
		router:   kr,
		executor: exec,
		status:   Status{Name: name},
	}
}

// Initialize marks the agent ready.
func (a *TaskAgent) Initialize(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Initialized = true
	a.status.StartedAt = time.Now().UTC()
	a.status.LastUpdated = a.status.StartedAt
	return nil
}

// Process routes input["prompt"] and executes the matched task's chain.
func (a *TaskAgent) Process(ctx context.Context, input map[string]any) (map[string]any, error) {
	prompt, _ := input["prompt"].(string)
	if prompt == "" {
		a.recordError("prompt is required")
		return nil, fmt.Errorf("prompt is required")
	}

	task, err := a.router.RouteTask(prompt)
	if err != nil {
		a.recordError(err.Error())
		return nil, err
	}
	chain, err := a.router.Chain(task.Name)
	if err != nil {
		a.recordError(err.Error())
		return nil, err
	}

	result, attempt := a.executor.Execute(ctx, chain, prompt, task.Name)
	if result == nil {
		a.recordError(attempt.Err)
		return nil, fmt.Errorf("task %s failed: %s", task.Name, attempt.Err)
	}

	a.mu.Lock()
	a.status.RequestsProcessed++
	a.status.LastUpdated = time.Now().UTC()
	a.mu.Unlock()

	return map[string]any{
		"task":     task.Name,
		"model":    result.Model,
		"response": result.Text,
	}, nil
}

// Shutdown marks the agent stopped.
func (a *TaskAgent) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Initialized = false
	a.status.LastUpdated = time.Now().UTC()
	return nil
}

// Status returns a copy of the agent's status.
func (a *TaskAgent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *TaskAgent) recordError(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status.Errors++
	a.status.LastError = msg
	a.status.LastUpdated = time.Now().UTC()
}
