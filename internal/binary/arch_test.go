package binary

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

func defaultTable(t *testing.T) *release.Table {
	t.Helper()
	table, err := release.Load()
	require.NoError(t, err)
	return table
}

func TestResolveArchitecture_Supported(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		goos   string
		goarch string
		want   string
	}{
		{"linux", "amd64", "x86_64"},
		{"linux", "arm64", "aarch64"},
		{"linux", "arm", "armv6hf"},
		{"linux", "riscv64", "riscv64"},
		{"darwin", "amd64", "x86_64"},
		{"darwin", "arm64", "aarch64"},
		{"windows", "amd64", "x86_64"},

		// Aliases from Node and uname.
		{"linux", "x64", "x86_64"},
		{"linux", "x86_64", "x86_64"},
		{"linux", "aarch64", "aarch64"},
		{"linux", "armv7l", "armv6hf"},
		{"macos", "arm64", "aarch64"},
		{"win32", "x64", "x86_64"},
		{"Linux", "AMD64", "x86_64"},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := ResolveArchitecture(table, tt.goos, tt.goarch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveArchitecture_EveryTableEntry(t *testing.T) {
	table := defaultTable(t)

	for _, goos := range table.Platforms() {
		archs, ok := table.Architectures(goos)
		require.True(t, ok)
		for _, a := range archs {
			got, err := ResolveArchitecture(table, goos, a.Host)
			require.NoError(t, err, "%s/%s", goos, a.Host)
			assert.Equal(t, a.Vendor, got, "%s/%s", goos, a.Host)
		}
	}
}

func TestResolveArchitecture_Unsupported(t *testing.T) {
	table := defaultTable(t)

	tests := []struct {
		name   string
		goos   string
		goarch string
	}{
		{name: "windows_arm64", goos: "win32", goarch: "arm64"},
		{name: "darwin_arm", goos: "darwin", goarch: "arm"},
		{name: "linux_386", goos: "linux", goarch: "ia32"},
		{name: "linux_s390x", goos: "linux", goarch: "s390x"},
		{name: "unknown_platform", goos: "freebsd", goarch: "amd64"},
		{name: "garbage_arch", goos: "linux", goarch: "pdp11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveArchitecture(table, tt.goos, tt.goarch)
			assert.ErrorIs(t, err, ErrUnsupportedArchitecture)
			assert.Empty(t, got)
		})
	}
}

func TestResolveArchitecture_FirstMatchWins(t *testing.T) {
	table, err := release.Parse([]byte(`
version: v0.11.0
mode: "0755"
base_url: https://example.com/releases
platforms:
  linux:
    archive: "sc-{{.Version}}.{{.Arch}}.tar.xz"
    architectures:
      - { host: arm64, vendor: aarch64 }
      - { host: amd64, vendor: x86_64 }
`))
	require.NoError(t, err)

	got, err := ResolveArchitecture(table, "linux", "arm64")
	require.NoError(t, err)
	assert.Equal(t, "aarch64", got)
}

func TestResolveArchitecture_DefaultsToHost(t *testing.T) {
	table := defaultTable(t)

	want, wantErr := ResolveArchitecture(table, runtime.GOOS, runtime.GOARCH)
	got, err := ResolveArchitecture(table, "", "")

	assert.Equal(t, want, got)
	assert.Equal(t, wantErr == nil, err == nil)
}

func TestBinaryNameFor(t *testing.T) {
	assert.Equal(t, "shellcheck.exe", binaryNameFor("windows"))
	assert.Equal(t, "shellcheck", binaryNameFor("linux"))
	assert.Equal(t, "shellcheck", binaryNameFor("darwin"))
}
