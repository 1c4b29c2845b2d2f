// Package perflog appends structured performance events, one JSON object
// per line, to a durable sink. It is observability only: a failed append
// never aborts task execution.
package perflog

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event names.
const (
	EventModelAttempt   = "model_attempt"
	EventChainExhausted = "fallback_chain_exhausted"
)

// AttemptSummary is the per-model record embedded in a chain-exhausted event.
type AttemptSummary struct {
	ModelName  string  `json:"model_name"`
	Success    bool    `json:"success"`
	Error      *string `json:"error"`
	Duration   float64 `json:"duration"`
	RetryCount int     `json:"retry_count"`
}

// Event is one performance log record.
type Event struct {
	Event         string           `json:"event"`
	RunID         string           `json:"run_id,omitempty"`
	ModelName     string           `json:"model_name,omitempty"`
	Success       bool             `json:"success"`
	Error         *string          `json:"error"`
	Duration      float64          `json:"duration,omitempty"`
	RetryCount    int              `json:"retry_count,omitempty"`
	TaskType      string           `json:"task_type"`
	FallbackChain []string         `json:"fallback_chain"`
	FallbackIndex int              `json:"fallback_index,omitempty"`
	Attempts      []AttemptSummary `json:"attempts,omitempty"`
	LastModelUsed string           `json:"last_model_used,omitempty"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Logger appends events to a file.
type Logger struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// New creates a performance logger writing to path.
func New(path string, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Append writes one event. Write failures are logged and swallowed.
func (l *Logger) Append(event Event) {
	if l == nil || l.path == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	event.Timestamp = l.now().UTC()
	line, err := json.Marshal(event)
	if err != nil {
		l.logger.Error("failed to encode performance event", zap.Error(err))
		return
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.logger.Error("failed to open performance log", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		l.logger.Error("failed to write performance log", zap.Error(err))
	}
}

// ErrString converts an error into the nullable form the log schema uses.
func ErrString(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
