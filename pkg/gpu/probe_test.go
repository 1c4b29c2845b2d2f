package gpu

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func failingRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return nil, fmt.Errorf("command not found: %s", name)
}

func TestAvailableMemoryFromDriver(t *testing.T) {
	p := New(nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		if name != "nvidia-smi" {
			t.Errorf("unexpected command %s", name)
		}
		return []byte("8192\n"), nil
	}))

	if got := p.AvailableMemory(context.Background()); got != 8192 {
		t.Fatalf("expected 8192, got %d", got)
	}
}

func TestAvailableMemoryMultiGPUUsesFirstDevice(t *testing.T) {
	p := New(nil, WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("4096\n8192\n"), nil
	}))

	if got := p.AvailableMemory(context.Background()); got != 4096 {
		t.Fatalf("expected 4096, got %d", got)
	}
}

func TestAvailableMemoryFallsBackToSysfs(t *testing.T) {
	sysfs := filepath.Join(t.TempDir(), "mem_info_vram_total")
	// 2 GiB in bytes.
	if err := os.WriteFile(sysfs, []byte("2147483648\n"), 0600); err != nil {
		t.Fatalf("write sysfs: %v", err)
	}

	p := New(nil, WithRunner(failingRunner), WithSysfsPath(sysfs))

	if got := p.AvailableMemory(context.Background()); got != 2048 {
		t.Fatalf("expected 2048, got %d", got)
	}
}

func TestAvailableMemoryDefault(t *testing.T) {
	p := New(nil,
		WithRunner(failingRunner),
		WithSysfsPath(filepath.Join(t.TempDir(), "missing")))

	if got := p.AvailableMemory(context.Background()); got != DefaultMemoryMB {
		t.Fatalf("expected default %d, got %d", DefaultMemoryMB, got)
	}
}

func TestAvailableMemoryUnparsableDriverOutput(t *testing.T) {
	p := New(nil,
		WithRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return []byte("N/A\n"), nil
		}),
		WithSysfsPath(filepath.Join(t.TempDir(), "missing")),
		WithDefaultMB(1234))

	if got := p.AvailableMemory(context.Background()); got != 1234 {
		t.Fatalf("expected 1234, got %d", got)
	}
}
