// Package fallback drives an ordered model chain until one model answers,
// with bounded retries and a hard timeout per attempt.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/modelgate/pkg/config"
	"github.com/zen-systems/modelgate/pkg/metrics"
	"github.com/zen-systems/modelgate/pkg/perflog"
	"github.com/zen-systems/modelgate/pkg/provider"
)

// Resolver resolves a model identifier to its call function.
type Resolver interface {
	Resolve(model string) (provider.CallFunc, bool)
}

// RetryPolicy bounds attempts against a single model. It is composed into
// the executor explicitly rather than wrapped around call sites.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls allowed per model.
	MaxAttempts int

	// Delay is the fixed wait between retries. No backoff in this layer.
	Delay time.Duration

	// Timeout is the hard wall-clock bound per call.
	Timeout time.Duration
}

// PolicyFromConfig builds a RetryPolicy from routing config.
func PolicyFromConfig(rc config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: rc.MaxRetries,
		Delay:       time.Duration(rc.RetryDelayMs) * time.Millisecond,
		Timeout:     time.Duration(rc.TimeoutSec) * time.Second,
	}
}

// Attempt records one try against one model.
type Attempt struct {
	Model    string
	Success  bool
	Err      string
	Duration time.Duration
	Retry    int
}

// Result is a successful chain execution.
type Result struct {
	Text  string
	Model string
}

// Executor drives fallback chains. Each execution is independent; the
// metrics store is the only shared state and serializes its own updates.
type Executor struct {
	resolver Resolver
	metrics  *metrics.Store
	perf     *perflog.Logger
	policy   RetryPolicy
	logger   *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(resolver Resolver, store *metrics.Store, perf *perflog.Logger, policy RetryPolicy, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 2
	}
	if policy.Timeout <= 0 {
		policy.Timeout = 60 * time.Second
	}
	return &Executor{
		resolver: resolver,
		metrics:  store,
		perf:     perf,
		policy:   policy,
		logger:   logger,
	}
}

// Execute tries each model in chain order until one succeeds. On success the
// result and the successful attempt are returned immediately; later models
// are never consulted. On total exhaustion the result is nil and the final
// attempt carries the terminal error. Models are tried strictly
// sequentially, and a model is never revisited once the chain advances.
func (e *Executor) Execute(ctx context.Context, chain []string, prompt, taskType string) (*Result, Attempt) {
	runID := uuid.NewString()
	var lastErr error
	var exhausted []perflog.AttemptSummary

	for idx, model := range chain {
		call, ok := e.resolver.Resolve(model)
		if !ok {
			e.logger.Warn("skipping model with unresolved provider",
				zap.String("model", model))
			continue
		}

		var attempt Attempt
		terminal := false
		for retry := 0; retry < e.policy.MaxAttempts; retry++ {
			attempt = Attempt{Model: model, Retry: retry}

			start := time.Now()
			text, err := e.callOnce(ctx, call, model, prompt)
			attempt.Duration = time.Since(start)

			if err == nil {
				attempt.Success = true
				e.metrics.Update(model, true, attempt.Duration)
				e.logAttempt(runID, attempt, taskType, chain, idx, nil)
				e.logger.Info("model call succeeded",
					zap.String("model", model),
					zap.Duration("duration", attempt.Duration),
					zap.Int("retry", retry))
				return &Result{Text: text, Model: model}, attempt
			}

			lastErr = err
			attempt.Err = err.Error()
			e.metrics.Update(model, false, attempt.Duration)
			e.logAttempt(runID, attempt, taskType, chain, idx, err)
			e.logger.Warn("model call failed",
				zap.String("model", model),
				zap.Int("retry", retry),
				zap.Int("max_attempts", e.policy.MaxAttempts),
				zap.Error(err))

			if provider.IsConfigError(err) {
				// A retry cannot fix a missing credential.
				terminal = true
				break
			}
			if ctx.Err() != nil {
				terminal = true
				break
			}
			if retry < e.policy.MaxAttempts-1 {
				if err := sleepWithContext(ctx, e.policy.Delay); err != nil {
					terminal = true
					break
				}
			}
		}

		exhausted = append(exhausted, perflog.AttemptSummary{
			ModelName:  model,
			Success:    false,
			Error:      strPtr(attempt.Err),
			Duration:   attempt.Duration.Seconds(),
			RetryCount: attempt.Retry,
		})

		if terminal && ctx.Err() != nil {
			break
		}
		e.logger.Warn("all retries exhausted, falling back",
			zap.String("model", model),
			zap.Int("fallback_index", idx))
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no model in chain could be resolved")
	}
	e.appendEvent(perflog.Event{
		Event:         perflog.EventChainExhausted,
		RunID:         runID,
		Success:       false,
		Error:         perflog.ErrString(lastErr),
		TaskType:      taskType,
		FallbackChain: chain,
		Attempts:      exhausted,
		LastModelUsed: lastModel(exhausted),
	})
	e.logger.Error("fallback chain exhausted",
		zap.String("task_type", taskType),
		zap.Strings("chain", chain),
		zap.Error(lastErr))

	return nil, Attempt{
		Success: false,
		Err:     "all models in fallback chain failed",
	}
}

// callOnce issues one call under the policy timeout. A late response that
// lands after the deadline is treated as a timeout, never a success.
func (e *Executor) callOnce(ctx context.Context, call provider.CallFunc, model, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.policy.Timeout)
	defer cancel()

	text, err := call(cctx, model, prompt)
	if errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("model %s timed out after %s", model, e.policy.Timeout)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (e *Executor) logAttempt(runID string, attempt Attempt, taskType string, chain []string, idx int, err error) {
	e.appendEvent(perflog.Event{
		Event:         perflog.EventModelAttempt,
		RunID:         runID,
		ModelName:     attempt.Model,
		Success:       attempt.Success,
		Error:         perflog.ErrString(err),
		Duration:      attempt.Duration.Seconds(),
		RetryCount:    attempt.Retry,
		TaskType:      taskType,
		FallbackChain: chain,
		FallbackIndex: idx,
	})
}

// appendEvent is fire-and-forget: the perflog sink swallows its own
// failures and the executor never blocks on observability.
func (e *Executor) appendEvent(event perflog.Event) {
	if e.perf == nil {
		return
	}
	e.perf.Append(event)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func lastModel(attempts []perflog.AttemptSummary) string {
	if len(attempts) == 0 {
		return ""
	}
	return attempts[len(attempts)-1].ModelName
}
