// Package health assembles point-in-time system health snapshots from the
// catalog, the memory probe, and the metrics store.
package health

import (
	"context"
	"strings"
	"time"

	"github.com/zen-systems/modelgate/pkg/catalog"
	"github.com/zen-systems/modelgate/pkg/metrics"
)

// ModelHealth is the per-model slice of a snapshot.
type ModelHealth struct {
	Status             metrics.Health `json:"status"`
	MemoryMB           int            `json:"memory_requirement_mb"`
	SuccessRate        float64        `json:"success_rate"`
	TotalAttempts      int            `json:"total_attempts"`
	SuccessfulAttempts int            `json:"successful_attempts"`
	AverageDuration    float64        `json:"average_duration"`
	LastUsed           time.Time      `json:"last_used"`
}

// Snapshot is a read-only view of system health for monitoring consumers.
type Snapshot struct {
	GPUAvailable bool                   `json:"gpu_available"`
	GPUMemoryMB  int                    `json:"gpu_memory_mb"`
	Models       map[string]ModelHealth `json:"models"`
	Overall      metrics.Health         `json:"overall_health"`
	Timestamp    time.Time              `json:"timestamp"`
}

// MemorySource reports available accelerator memory in MB.
type MemorySource interface {
	AvailableMemory(ctx context.Context) int
}

// Collect folds all tracked model metrics into a snapshot. The aggregate is
// degraded as soon as any model is non-healthy; it is never unhealthy at
// the system level because the chain still has working models to fall
// back to.
func Collect(ctx context.Context, cat *catalog.Catalog, probe MemorySource, store *metrics.Store) Snapshot {
	memory := probe.AvailableMemory(ctx)
	snapshot := Snapshot{
		GPUAvailable: memory > 0,
		GPUMemoryMB:  memory,
		Models:       make(map[string]ModelHealth),
		Overall:      metrics.Healthy,
		Timestamp:    time.Now().UTC(),
	}

	for name, m := range store.Models() {
		mh := ModelHealth{
			Status:             m.Status(),
			SuccessRate:        m.SuccessRate(),
			TotalAttempts:      m.TotalAttempts,
			SuccessfulAttempts: m.SuccessfulAttempts,
			AverageDuration:    m.AverageDuration().Seconds(),
			LastUsed:           m.LastUsed,
		}
		// Metrics are keyed by the namespaced identifier; catalog entries
		// for local models use the bare tag.
		if d, err := cat.Get(name); err == nil {
			mh.MemoryMB = d.MemoryMB
		} else if _, tag, found := strings.Cut(name, "/"); found {
			if d, err := cat.Get(tag); err == nil {
				mh.MemoryMB = d.MemoryMB
			}
		}
		snapshot.Models[name] = mh

		if mh.Status != metrics.Healthy {
			snapshot.Overall = metrics.Degraded
		}
	}

	return snapshot
}
