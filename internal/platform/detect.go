package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using the running host.
type RealDetector struct{}

// NewDetector creates a new platform detector.
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect reports the host platform. OS and Arch come from runtime; the raw
// kernel architecture and the Linux distribution come from gopsutil.
//
// gopsutil failures are not fatal: ArchRaw falls back to runtime.GOARCH and
// the distro fields stay empty. A cancelled context is always an error.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", err)
	}

	info := &Info{
		OS:      runtime.GOOS,
		Arch:    NormalizeArch(runtime.GOARCH),
		ArchRaw: runtime.GOARCH,
	}

	if kernelArch, err := host.KernelArch(); err == nil && kernelArch != "" {
		info.ArchRaw = kernelArch
	} else if ctx.Err() != nil {
		return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
	}

	if runtime.GOOS != "linux" {
		return info, nil
	}

	distro, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
		}
		return info, nil
	}

	if distro = normalizeID(distro); distro != "" {
		info.Distro = distro
		info.Family = normalizeID(family)
		info.Version = normalizeID(version)
	}

	return info, nil
}
