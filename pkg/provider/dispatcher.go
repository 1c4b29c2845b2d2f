// Package provider resolves namespaced model identifiers to the transport
// adapter that can execute them and normalizes vendor responses to text.
package provider

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/modelgate/pkg/config"
)

// CallFunc issues one bounded request for a fully-qualified model
// identifier and returns the normalized text response.
type CallFunc func(ctx context.Context, model, prompt string) (string, error)

// Caller is implemented by provider adapters.
type Caller interface {
	// Name returns the adapter's identifier prefix.
	Name() string

	// Call sends a prompt to the model and returns the response text.
	Call(ctx context.Context, model, prompt string) (string, error)
}

// Dispatcher maps model-identifier prefixes to provider adapters.
type Dispatcher struct {
	providers map[string]Caller
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher with all built-in adapters registered.
// Adapters are registered even when their credential is absent; the missing
// credential surfaces as a ConfigError at call time for that provider only.
func NewDispatcher(cfg *config.Config, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		providers: make(map[string]Caller),
		logger:    logger,
	}
	d.Register(NewOllamaAdapter(cfg.OllamaURL))
	d.Register(NewOpenAIAdapter(cfg.OpenAIAPIKey))
	d.Register(NewAnthropicAdapter(cfg.AnthropicAPIKey))
	d.Register(NewDeepSeekAdapter(cfg.DeepSeekAPIKey))
	d.Register(NewGoogleAdapter(cfg.GoogleAPIKey))
	return d
}

// Register adds an adapter under its identifier prefix.
func (d *Dispatcher) Register(c Caller) {
	d.providers[c.Name()] = c
}

// Resolve returns the call function for a model identifier, or false when
// the identifier's provider prefix is unrecognized. An unresolved model is
// not a hard failure: the caller skips the candidate.
func (d *Dispatcher) Resolve(model string) (CallFunc, bool) {
	prefix, _, found := strings.Cut(model, "/")
	if !found {
		d.logger.Warn("model identifier has no provider prefix", zap.String("model", model))
		return nil, false
	}
	p, ok := d.providers[prefix]
	if !ok {
		d.logger.Warn("no adapter for provider", zap.String("provider", prefix))
		return nil, false
	}
	return p.Call, true
}

// modelTag strips the provider prefix from a model identifier.
func modelTag(model string) string {
	if _, tag, found := strings.Cut(model, "/"); found {
		return tag
	}
	return model
}
