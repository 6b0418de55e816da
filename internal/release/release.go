// Package release holds the static ShellCheck distribution table: which
// platforms and architectures have prebuilt binaries, what the release
// archives are called, the default version, and the file mode applied to the
// installed executable.
//
// The table ships embedded in the binary and is parsed once per process.
// A *Table is read-only; accessors return copies.
package release

import (
	"bytes"
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/platform"
)

//go:embed release.yaml
var defaultManifest []byte

// Architecture maps a host architecture (GOARCH) to the vendor token used in
// release file names.
type Architecture struct {
	Host   string `yaml:"host"`
	Vendor string `yaml:"vendor"`
}

type manifest struct {
	Version   string                  `yaml:"version"`
	Mode      string                  `yaml:"mode"`
	BaseURL   string                  `yaml:"base_url"`
	Platforms map[string]platformSpec `yaml:"platforms"`
}

type platformSpec struct {
	Archive       string         `yaml:"archive"`
	Architectures []Architecture `yaml:"architectures"`
}

type platformEntry struct {
	archive       *template.Template
	architectures []Architecture
}

// Table is an immutable, parsed distribution table.
type Table struct {
	version   string
	mode      os.FileMode
	baseURL   string
	platforms map[string]platformEntry
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultManifest)
})

// Load returns the embedded distribution table. It is parsed on first use
// and shared afterwards.
func Load() (*Table, error) {
	return loadDefault()
}

// Parse parses and validates a distribution table in YAML form.
func Parse(data []byte) (*Table, error) {
	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode release table: %w", err)
	}

	version, err := NormalizeVersion(m.Version)
	if err != nil {
		return nil, err
	}

	mode, err := ParseMode(m.Mode)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(m.BaseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("invalid base_url %q: must be an absolute http(s) URL", m.BaseURL)
	}

	if len(m.Platforms) == 0 {
		return nil, fmt.Errorf("release table has no platforms")
	}

	t := &Table{
		version:   version,
		mode:      mode,
		baseURL:   strings.TrimSuffix(m.BaseURL, "/"),
		platforms: make(map[string]platformEntry, len(m.Platforms)),
	}

	for name, spec := range m.Platforms {
		goos := platform.NormalizeOS(name)
		if _, dup := t.platforms[goos]; dup {
			return nil, fmt.Errorf("platform %q listed more than once", goos)
		}

		entry, err := parsePlatform(goos, spec)
		if err != nil {
			return nil, err
		}
		t.platforms[goos] = entry
	}

	return t, nil
}

func parsePlatform(goos string, spec platformSpec) (platformEntry, error) {
	if spec.Archive == "" {
		return platformEntry{}, fmt.Errorf("platform %q: archive name template is required", goos)
	}

	tmpl, err := template.New(goos).Option("missingkey=error").Parse(spec.Archive)
	if err != nil {
		return platformEntry{}, fmt.Errorf("platform %q: parse archive template: %w", goos, err)
	}

	if len(spec.Architectures) == 0 {
		return platformEntry{}, fmt.Errorf("platform %q: no architectures listed", goos)
	}

	seen := make(map[string]bool, len(spec.Architectures))
	archs := make([]Architecture, 0, len(spec.Architectures))
	for _, a := range spec.Architectures {
		host := platform.NormalizeArch(a.Host)
		if host == "" || a.Vendor == "" {
			return platformEntry{}, fmt.Errorf("platform %q: architecture entries need both host and vendor", goos)
		}
		if seen[host] {
			return platformEntry{}, fmt.Errorf("platform %q: architecture %q listed more than once", goos, host)
		}
		seen[host] = true
		archs = append(archs, Architecture{Host: host, Vendor: a.Vendor})
	}

	return platformEntry{archive: tmpl, architectures: archs}, nil
}

// Version returns the default ShellCheck version, always "v"-prefixed.
func (t *Table) Version() string {
	return t.version
}

// Mode returns the file mode applied to the installed executable.
func (t *Table) Mode() os.FileMode {
	return t.mode
}

// Platforms returns the supported platforms in sorted order.
func (t *Table) Platforms() []string {
	names := make([]string, 0, len(t.platforms))
	for name := range t.platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Architectures returns the ordered architecture mappings for goos.
// The second result is false when the platform is unknown.
func (t *Table) Architectures(goos string) ([]Architecture, bool) {
	entry, ok := t.platforms[goos]
	if !ok {
		return nil, false
	}
	return append([]Architecture(nil), entry.architectures...), true
}

// DownloadURL builds the default release URL for a platform and vendor
// architecture token. An empty version selects the table default.
func (t *Table) DownloadURL(version, goos, vendorArch string) (string, error) {
	goos = platform.NormalizeOS(goos)
	entry, ok := t.platforms[goos]
	if !ok {
		return "", fmt.Errorf("no release archive for platform %q", goos)
	}

	if version == "" {
		version = t.version
	}
	version, err := NormalizeVersion(version)
	if err != nil {
		return "", err
	}

	var name bytes.Buffer
	data := struct{ Version, Arch string }{Version: version, Arch: vendorArch}
	if err := entry.archive.Execute(&name, data); err != nil {
		return "", fmt.Errorf("render archive name for %s/%s: %w", goos, vendorArch, err)
	}

	u, err := url.JoinPath(t.baseURL, version, name.String())
	if err != nil {
		return "", fmt.Errorf("join download URL: %w", err)
	}
	return u, nil
}

// NormalizeVersion validates a ShellCheck version and returns it with a "v"
// prefix, the form used by release tags.
func NormalizeVersion(version string) (string, error) {
	if version == "" {
		return "", fmt.Errorf("version is required")
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", version, err)
	}
	return "v" + v.String(), nil
}

// ParseMode parses an octal permission string such as "0755" or "755".
// The mode must grant the owner execute permission.
func ParseMode(s string) (os.FileMode, error) {
	if s == "" {
		return 0, fmt.Errorf("mode is required")
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid mode %q: %w", s, err)
	}
	return CheckMode(os.FileMode(n))
}

// CheckMode rejects modes that are not plain permission bits or that do not
// let the owner execute the file.
func CheckMode(mode os.FileMode) (os.FileMode, error) {
	if mode&^os.ModePerm != 0 {
		return 0, fmt.Errorf("invalid mode %#o: only permission bits are allowed", uint32(mode))
	}
	if mode&0o100 == 0 {
		return 0, fmt.Errorf("invalid mode %#o: owner execute bit is required", uint32(mode))
	}
	return mode, nil
}
