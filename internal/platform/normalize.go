package platform

import "strings"

// osAliases maps the identifiers used by other ecosystems (Node's
// process.platform, uname, marketing names) to GOOS values.
var osAliases = map[string]string{
	"win32":   "windows",
	"win":     "windows",
	"windows": "windows",
	"darwin":  "darwin",
	"macos":   "darwin",
	"mac":     "darwin",
	"osx":     "darwin",
	"linux":   "linux",
}

// archAliases maps Node's process.arch and uname -m values to GOARCH values.
var archAliases = map[string]string{
	"amd64":   "amd64",
	"x64":     "amd64",
	"x86_64":  "amd64",
	"arm64":   "arm64",
	"aarch64": "arm64",
	"arm":     "arm",
	"armv6l":  "arm",
	"armv7l":  "arm",
	"386":     "386",
	"ia32":    "386",
	"i386":    "386",
	"i686":    "386",
	"x86":     "386",
	"riscv64": "riscv64",
	"ppc64":   "ppc64",
	"ppc64le": "ppc64le",
	"s390x":   "s390x",
}

// NormalizeOS converts an operating system identifier to its GOOS form.
// Unknown identifiers are returned lower-cased and trimmed.
func NormalizeOS(os string) string {
	id := normalizeID(os)
	if goos, ok := osAliases[id]; ok {
		return goos
	}
	return id
}

// NormalizeArch converts a CPU architecture identifier to its GOARCH form.
// Unknown identifiers are returned lower-cased and trimmed.
func NormalizeArch(arch string) string {
	id := normalizeID(arch)
	if goarch, ok := archAliases[id]; ok {
		return goarch
	}
	return id
}

func normalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
