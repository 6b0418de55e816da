package binary

import (
	"fmt"
	"runtime"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

// ResolveArchitecture returns the vendor architecture token that the release
// table lists for the given platform and architecture. Empty arguments
// default to runtime.GOOS and runtime.GOARCH. Both are normalized first, so
// "win32" and "x64" are accepted.
//
// The first matching entry wins.
func ResolveArchitecture(table *release.Table, goos, goarch string) (string, error) {
	if goos == "" {
		goos = runtime.GOOS
	}
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	goos = platform.NormalizeOS(goos)
	goarch = platform.NormalizeArch(goarch)

	archs, ok := table.Architectures(goos)
	if !ok {
		return "", fmt.Errorf("%w %q: platform %q has no release", ErrUnsupportedArchitecture, goarch, goos)
	}

	for _, a := range archs {
		if a.Host == goarch {
			return a.Vendor, nil
		}
	}

	return "", fmt.Errorf("%w %q for platform %q", ErrUnsupportedArchitecture, goarch, goos)
}

// binaryNameFor returns the executable's file name inside release archives.
func binaryNameFor(goos string) string {
	if goos == "windows" {
		return windowsBinaryName
	}
	return binaryName
}
