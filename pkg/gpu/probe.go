// Package gpu reports available accelerator memory for model selection.
package gpu

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultMemoryMB is the conservative assumption when no probe source works.
const DefaultMemoryMB = 6 * 1024

const amdVRAMPath = "/sys/class/drm/card0/device/mem_info_vram_total"

// runner executes a probe command and returns its combined stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Probe reports available compute memory. Sources are tried in order:
// driver query, sysfs read, fixed default. A transition happens only when
// the previous source fails or is absent.
type Probe struct {
	run       runner
	sysfsPath string
	defaultMB int
	logger    *zap.Logger
}

// Option configures a Probe.
type Option func(*Probe)

// WithRunner overrides the command runner (used in tests).
func WithRunner(r runner) Option {
	return func(p *Probe) { p.run = r }
}

// WithSysfsPath overrides the sysfs VRAM path (used in tests).
func WithSysfsPath(path string) Option {
	return func(p *Probe) { p.sysfsPath = path }
}

// WithDefaultMB overrides the fallback memory value.
func WithDefaultMB(mb int) Option {
	return func(p *Probe) { p.defaultMB = mb }
}

// New creates a Probe.
func New(logger *zap.Logger, opts ...Option) *Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Probe{
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
		sysfsPath: amdVRAMPath,
		defaultMB: DefaultMemoryMB,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AvailableMemory returns free accelerator memory in MB.
func (p *Probe) AvailableMemory(ctx context.Context) int {
	if mb, ok := p.fromDriver(ctx); ok {
		return mb
	}
	if mb, ok := p.fromSysfs(); ok {
		return mb
	}
	p.logger.Warn("no GPU memory source available, assuming default",
		zap.Int("default_mb", p.defaultMB))
	return p.defaultMB
}

// fromDriver queries the NVIDIA driver tool for free memory.
func (p *Probe) fromDriver(ctx context.Context) (int, bool) {
	out, err := p.run(ctx, "nvidia-smi",
		"--query-gpu=memory.free", "--format=csv,noheader,nounits")
	if err != nil {
		p.logger.Debug("driver memory query failed", zap.Error(err))
		return 0, false
	}
	// Multi-GPU hosts report one line per device; the first device is used.
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	mb, err := strconv.Atoi(line)
	if err != nil || mb <= 0 {
		p.logger.Debug("driver memory query returned unparsable output",
			zap.String("output", line))
		return 0, false
	}
	return mb, true
}

// fromSysfs reads total VRAM from the amdgpu sysfs entry, in bytes.
func (p *Probe) fromSysfs() (int, bool) {
	data, err := os.ReadFile(p.sysfsPath)
	if err != nil {
		return 0, false
	}
	bytes, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || bytes <= 0 {
		return 0, false
	}
	return int(bytes / (1024 * 1024)), true
}
