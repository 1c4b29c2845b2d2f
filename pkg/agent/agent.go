// Package agent defines the capability contract components plug into and
// an explicit registry for constructing them by name.
package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Status is a point-in-time snapshot of an agent.
type Status struct {
	Name              string    `json:"name"`
	Initialized       bool      `json:"initialized"`
	RequestsProcessed int       `json:"requests_processed"`
	Errors            int       `json:"errors"`
	LastError         string    `json:"last_error,omitempty"`
	StartedAt         time.Time `json:"started_at"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Agent is the capability contract. Implementations own their resources
// between Initialize and Shutdown.
type Agent interface {
	Initialize(ctx context.Context) error
	Process(ctx context.Context, input map[string]any) (map[string]any, error)
	Shutdown(ctx context.Context) error
	Status() Status
}

// Factory constructs an agent.
type Factory func() (Agent, error)

// Registry maps agent names to factories. It is populated by explicit
// registration calls at startup; there is no directory scanning and no
// import side effects.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under a name. Re-registering a name replaces
// the previous factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// New constructs the named agent.
func (r *Registry) New(name string) (Agent, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("agent not registered: %s", name)
	}
	return factory()
}

// Names returns the registered agent names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
