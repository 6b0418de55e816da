package binary

import (
	"context"
	"time"
)

const (
	// archiveFileName is the fixed name of the downloaded archive inside the
	// working directory.
	archiveFileName = "shellcheck.download"

	binaryName        = "shellcheck"
	windowsBinaryName = "shellcheck.exe"
)

// Request describes one installation. Only Destination is required.
type Request struct {
	// Destination is where the executable ends up. Its parent directory must
	// exist and be writable.
	Destination string

	// URL overrides the default release URL when set. It is used verbatim.
	URL string

	// Platform is the target OS (GOOS, or aliases such as "win32").
	// Defaults to runtime.GOOS.
	Platform string

	// Architecture is the target CPU (GOARCH, or aliases such as "x64").
	// Defaults to runtime.GOARCH.
	Architecture string

	// SHA256 is the expected hex digest of the downloaded archive. Empty
	// skips verification.
	SHA256 string
}

// Result describes a completed installation.
type Result struct {
	Path         string        // installed executable
	URL          string        // archive URL that was fetched
	Platform     string        // normalized target OS
	Architecture string        // normalized host architecture
	Verified     bool          // archive digest was checked
	Duration     time.Duration // wall time of the whole pipeline
}

// ExtractOptions controls which archive entries are written to disk.
type ExtractOptions struct {
	// StripComponents removes this many leading path elements from each
	// entry name. Entries with no more elements than that keep their base name.
	StripComponents int

	// Filter selects entries by their stripped name. Nil keeps every file.
	Filter func(name string) bool
}

// Fetcher downloads a URL to a local file.
type Fetcher interface {
	FetchToFile(ctx context.Context, url, destPath string) error
}

// ArchiveExtractor unpacks selected entries of an archive into a directory
// and returns the paths it wrote.
type ArchiveExtractor interface {
	Extract(ctx context.Context, archivePath, outputDir string, opts ExtractOptions) ([]string, error)
}
