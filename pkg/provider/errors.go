package provider

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing credential or endpoint for one provider.
// It is terminal for that provider: a retry cannot fix a missing secret.
type ConfigError struct {
	Provider string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Reason)
}

// IsConfigError reports whether err is a provider configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// CallError wraps a network or vendor failure with provider metadata.
type CallError struct {
	Provider string
	Status   int
	Err      error
}

func (e *CallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s call failed (status=%d)", e.Provider, e.Status)
}

func (e *CallError) Unwrap() error {
	return e.Err
}
