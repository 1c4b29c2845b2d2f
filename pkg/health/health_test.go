package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/modelgate/pkg/catalog"
	"github.com/zen-systems/modelgate/pkg/metrics"
)

type fixedMemory int

func (f fixedMemory) AvailableMemory(context.Context) int { return int(f) }

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Descriptor{
		{Name: "llama3:8b", Priority: 1, MemoryMB: 4700},
		{Name: "gemma:2b", Priority: 2, MemoryMB: 1700},
	}, nil)
}

func record(s *metrics.Store, model string, successes, failures int) {
	for i := 0; i < successes; i++ {
		s.Update(model, true, 100*time.Millisecond)
	}
	for i := 0; i < failures; i++ {
		s.Update(model, false, 100*time.Millisecond)
	}
}

func TestCollectAllHealthy(t *testing.T) {
	store := metrics.NewStore()
	record(store, "ollama/llama3:8b", 9, 1)
	record(store, "ollama/gemma:2b", 10, 0)

	snap := Collect(context.Background(), testCatalog(), fixedMemory(6144), store)

	assert.Equal(t, metrics.Healthy, snap.Overall)
	assert.True(t, snap.GPUAvailable)
	assert.Equal(t, 6144, snap.GPUMemoryMB)
	require.Len(t, snap.Models, 2)
	assert.InDelta(t, 0.9, snap.Models["ollama/llama3:8b"].SuccessRate, 0.001)
}

func TestCollectDegradedWhenAnyModelSlips(t *testing.T) {
	store := metrics.NewStore()
	record(store, "ollama/llama3:8b", 10, 0)
	record(store, "ollama/gemma:2b", 6, 4)

	snap := Collect(context.Background(), testCatalog(), fixedMemory(6144), store)

	assert.Equal(t, metrics.Degraded, snap.Overall)
	assert.Equal(t, metrics.Healthy, snap.Models["ollama/llama3:8b"].Status)
	assert.Equal(t, metrics.Degraded, snap.Models["ollama/gemma:2b"].Status)
}

func TestCollectAggregateNeverUnhealthy(t *testing.T) {
	store := metrics.NewStore()
	record(store, "ollama/llama3:8b", 0, 10)
	record(store, "ollama/gemma:2b", 0, 10)

	snap := Collect(context.Background(), testCatalog(), fixedMemory(6144), store)

	// Individual models are unhealthy; the system as a whole only degrades.
	assert.Equal(t, metrics.Unhealthy, snap.Models["ollama/llama3:8b"].Status)
	assert.Equal(t, metrics.Degraded, snap.Overall)
}

func TestCollectResolvesMemoryThroughPrefix(t *testing.T) {
	store := metrics.NewStore()
	record(store, "ollama/llama3:8b", 1, 0)
	record(store, "openai/gpt-4o-mini", 1, 0)

	snap := Collect(context.Background(), testCatalog(), fixedMemory(6144), store)

	assert.Equal(t, 4700, snap.Models["ollama/llama3:8b"].MemoryMB,
		"namespaced metric keys resolve to catalog entries by bare tag")
	assert.Equal(t, 0, snap.Models["openai/gpt-4o-mini"].MemoryMB,
		"hosted models have no local memory requirement")
}

func TestCollectEmptyStoreIsHealthy(t *testing.T) {
	snap := Collect(context.Background(), testCatalog(), fixedMemory(0), metrics.NewStore())

	assert.Equal(t, metrics.Healthy, snap.Overall)
	assert.False(t, snap.GPUAvailable)
	assert.Empty(t, snap.Models)
	assert.False(t, snap.Timestamp.IsZero())
}
