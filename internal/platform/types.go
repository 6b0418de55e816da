// Package platform detects the host operating system and CPU architecture
// and normalizes the identifiers callers pass in.
//
// Identifiers are normalized to Go's GOOS/GOARCH vocabulary, so "win32",
// "x64" and "aarch64" become "windows", "amd64" and "arm64". Detection uses
// runtime for OS and architecture and gopsutil for the kernel architecture
// and Linux distribution details, falling back gracefully when those fail.
package platform

import "context"

// Info contains platform detection information.
type Info struct {
	OS      string // "linux", "darwin", "windows"
	Arch    string // normalized GOARCH ("amd64", "arm64", ...)
	ArchRaw string // kernel-reported architecture (e.g., "x86_64", "aarch64")
	Distro  string // distro ID (Linux only, e.g., "ubuntu")
	Family  string // distro family as reported by the host (Linux only)
	Version string // distro version (Linux only, e.g., "22.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsAMD64 returns true if the architecture is amd64.
func (i *Info) IsAMD64() bool {
	return i.Arch == "amd64"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
