// Package router selects models and model chains for incoming tasks.
package router

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/zen-systems/modelgate/pkg/catalog"
	"github.com/zen-systems/modelgate/pkg/gpu"
)

// ErrNoSuitableModel is returned when no available model supports a task type.
var ErrNoSuitableModel = fmt.Errorf("no suitable model available")

// MemorySource reports available accelerator memory in MB.
type MemorySource interface {
	AvailableMemory(ctx context.Context) int
}

var _ MemorySource = (*gpu.Probe)(nil)

// Router routes structured task types to catalog models, preferring
// high-priority models that fit in probed memory.
type Router struct {
	catalog *catalog.Catalog
	probe   MemorySource
	logger  *zap.Logger
}

// New creates a Router.
func New(cat *catalog.Catalog, probe MemorySource, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{catalog: cat, probe: probe, logger: logger}
}

// Route returns the best model for a task type: the highest-priority
// available model that fits in probed memory, ties broken by smaller
// memory requirement. When nothing fits, the smallest suitable model is
// returned with a warning; memory pressure never refuses a route.
func (r *Router) Route(ctx context.Context, taskType catalog.TaskType) (string, catalog.Descriptor, error) {
	var suitable []catalog.Descriptor
	for _, d := range r.catalog.List() {
		if d.Available && d.Supports(taskType) {
			suitable = append(suitable, d)
		}
	}

	if len(suitable) == 0 {
		return "", catalog.Descriptor{}, fmt.Errorf("%w for task type %s", ErrNoSuitableModel, taskType)
	}

	sort.Slice(suitable, func(i, j int) bool {
		if suitable[i].Priority != suitable[j].Priority {
			return suitable[i].Priority < suitable[j].Priority
		}
		return suitable[i].MemoryMB < suitable[j].MemoryMB
	})

	available := r.probe.AvailableMemory(ctx)
	for _, d := range suitable {
		if d.MemoryMB <= available {
			return d.Name, d, nil
		}
	}

	smallest := suitable[0]
	for _, d := range suitable[1:] {
		if d.MemoryMB < smallest.MemoryMB {
			smallest = d
		}
	}
	r.logger.Warn("no model fits in available memory, using smallest",
		zap.Int("available_mb", available),
		zap.String("model", smallest.Name),
		zap.Int("memory_requirement_mb", smallest.MemoryMB))
	return smallest.Name, smallest, nil
}
