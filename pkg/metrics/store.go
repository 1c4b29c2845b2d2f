// Package metrics accumulates per-model attempt counters and derives a
// health classification from the rolling success rate.
package metrics

import (
	"sync"
	"time"
)

// Health classifies a model by its success rate.
type Health string

const (
	Healthy   Health = "healthy"
	Degraded  Health = "degraded"
	Unhealthy Health = "unhealthy"
)

// Metrics is a read-only copy of one model's counters.
type Metrics struct {
	TotalAttempts      int
	SuccessfulAttempts int
	TotalDuration      time.Duration
	LastUsed           time.Time
}

// SuccessRate returns successful/total, defaulting to 1.0 with no data.
// Models are assumed healthy until proven otherwise.
func (m Metrics) SuccessRate() float64 {
	if m.TotalAttempts == 0 {
		return 1.0
	}
	return float64(m.SuccessfulAttempts) / float64(m.TotalAttempts)
}

// AverageDuration returns the mean attempt duration.
func (m Metrics) AverageDuration() time.Duration {
	if m.TotalAttempts == 0 {
		return 0
	}
	return m.TotalDuration / time.Duration(m.TotalAttempts)
}

// Status classifies the model from its success rate.
func (m Metrics) Status() Health {
	rate := m.SuccessRate()
	switch {
	case rate > 0.8:
		return Healthy
	case rate > 0.5:
		return Degraded
	default:
		return Unhealthy
	}
}

// Store is the process-wide table of per-model metrics. Counters are
// monotonic and only reset on process restart. Updates from concurrent
// task executions are serialized per store.
type Store struct {
	mu     sync.Mutex
	models map[string]*Metrics
	now    func() time.Time
}

// NewStore creates an empty metrics store.
func NewStore() *Store {
	return &Store{
		models: make(map[string]*Metrics),
		now:    time.Now,
	}
}

// Update folds one attempt into the model's counters.
func (s *Store) Update(model string, success bool, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[model]
	if !ok {
		m = &Metrics{}
		s.models[model] = m
	}
	m.TotalAttempts++
	m.TotalDuration += duration
	m.LastUsed = s.now()
	if success {
		m.SuccessfulAttempts++
	}
}

// SuccessRate returns the model's success rate, 1.0 when untracked.
func (s *Store) SuccessRate(model string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[model]
	if !ok {
		return 1.0
	}
	return m.SuccessRate()
}

// Get returns a copy of the model's metrics.
func (s *Store) Get(model string) (Metrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.models[model]
	if !ok {
		return Metrics{}, false
	}
	return *m, true
}

// Models returns a copy of all tracked metrics keyed by model name.
func (s *Store) Models() map[string]Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Metrics, len(s.models))
	for name, m := range s.models {
		out[name] = *m
	}
	return out
}
