package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

// Options configures an Installer. Zero values select the defaults noted on
// each field.
type Options struct {
	// Table is the distribution table (default: release.Load()).
	Table *release.Table
	// Fetcher downloads archives (default: a Downloader on Fs).
	Fetcher Fetcher
	// Extractor unpacks archives (default: an Extractor on Fs).
	Extractor ArchiveExtractor
	// Fs provides the filesystem primitives (default: the OS filesystem).
	// Destination checks go through it as well. When it reports OS file
	// info, writability is checked on the same path in the OS, so it must
	// not remap paths.
	Fs afero.Fs
	// Logger receives progress messages (default: discard).
	Logger logging.Logger
	// TempDir is the parent of per-install working directories
	// (default: os.TempDir()).
	TempDir string
	// Version selects the ShellCheck release (default: the table's version).
	Version string
	// Mode is applied to the installed executable (default: the table's mode).
	Mode os.FileMode
}

// Installer downloads, extracts and installs ShellCheck. It holds no
// per-install state, so one Installer may serve concurrent Install calls.
type Installer struct {
	table     *release.Table
	fetcher   Fetcher
	extractor ArchiveExtractor
	fs        afero.Fs
	logger    logging.Logger
	tempDir   string
	version   string
	mode      os.FileMode
}

// NewInstaller creates an Installer from opts.
func NewInstaller(opts Options) (*Installer, error) {
	table := opts.Table
	if table == nil {
		t, err := release.Load()
		if err != nil {
			return nil, fmt.Errorf("load release table: %w", err)
		}
		table = t
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	version := table.Version()
	if opts.Version != "" {
		v, err := release.NormalizeVersion(opts.Version)
		if err != nil {
			return nil, err
		}
		version = v
	}

	mode := table.Mode()
	if opts.Mode != 0 {
		m, err := release.CheckMode(opts.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewDownloader(fs, WithDownloadLogger(logger))
	}

	extractor := opts.Extractor
	if extractor == nil {
		extractor = NewExtractor(fs)
	}

	return &Installer{
		table:     table,
		fetcher:   fetcher,
		extractor: extractor,
		fs:        fs,
		logger:    logger,
		tempDir:   opts.TempDir,
		version:   version,
		mode:      mode,
	}, nil
}

// Install places a ShellCheck executable at req.Destination.
//
// The destination is only touched by the final rename. Every failure returns
// an *InstallError naming the phase. The working directory is removed on
// every path out of Install; failing to remove it is logged, not returned.
func (i *Installer) Install(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logging.With(i.logger, "run_id", runID)

	goos := req.Platform
	if goos == "" {
		goos = runtime.GOOS
	}
	goarch := req.Architecture
	if goarch == "" {
		goarch = runtime.GOARCH
	}
	goos = platform.NormalizeOS(goos)
	goarch = platform.NormalizeArch(goarch)
	binName := binaryNameFor(goos)

	// Validate
	if req.Destination == "" {
		return nil, phaseError(PhaseValidate, errors.New("destination path is required"))
	}
	dest := filepath.Clean(req.Destination)
	if err := checkWritableDir(i.fs, filepath.Dir(dest)); err != nil {
		return nil, phaseError(PhaseValidate, err)
	}
	if fi, err := i.fs.Stat(dest); err == nil && fi.IsDir() {
		return nil, phaseError(PhaseValidate, fmt.Errorf("destination %s is a directory", dest))
	}

	// Stage
	log.Debug("creating working directory", "parent", i.tempDir)
	workDir, err := afero.TempDir(i.fs, i.tempDir, "scfetch-"+runID[:8]+"-")
	if err != nil {
		return nil, phaseError(PhaseStage, err)
	}
	defer func() {
		log.Debug("removing working directory", "dir", workDir)
		if err := i.fs.RemoveAll(workDir); err != nil {
			log.Warn("failed to remove working directory", "dir", workDir, "error", err)
		}
	}()

	// Resolve URL
	downloadURL := req.URL
	if downloadURL == "" {
		log.Debug("building download URL", "platform", goos, "arch", goarch, "version", i.version)
		vendorArch, err := ResolveArchitecture(i.table, goos, goarch)
		if err != nil {
			return nil, phaseError(PhaseResolve, err)
		}
		downloadURL, err = i.table.DownloadURL(i.version, goos, vendorArch)
		if err != nil {
			return nil, phaseError(PhaseResolve, err)
		}
	}

	// Download
	archivePath := filepath.Join(workDir, archiveFileName)
	log.Info("downloading archive", "url", downloadURL, "archive", archivePath)
	if err := i.fetcher.FetchToFile(ctx, downloadURL, archivePath); err != nil {
		return nil, phaseError(PhaseDownload, err)
	}

	verified := false
	if req.SHA256 != "" {
		log.Debug("verifying archive checksum", "archive", archivePath)
		if err := verifySHA256(i.fs, archivePath, req.SHA256); err != nil {
			return nil, phaseError(PhaseVerify, err)
		}
		verified = true
	}

	// Extract
	log.Info("extracting archive", "archive", archivePath, "dir", workDir, "entry", binName)
	files, err := i.extractor.Extract(ctx, archivePath, workDir, ExtractOptions{
		StripComponents: 1,
		Filter:          func(name string) bool { return name == binName },
	})
	if err != nil {
		return nil, phaseError(PhaseExtract, err)
	}
	binPath := filepath.Join(workDir, binName)
	if !slices.Contains(files, binPath) {
		return nil, phaseError(PhaseExtract, fmt.Errorf("%s not found in archive", binName))
	}

	// Permissions
	log.Debug("changing permissions", "mode", fmt.Sprintf("%#o", uint32(i.mode)), "path", binPath)
	if err := i.fs.Chmod(binPath, i.mode); err != nil {
		return nil, phaseError(PhaseChmod, err)
	}

	// Install
	log.Info("moving executable", "from", binPath, "to", dest)
	if err := i.fs.Rename(binPath, dest); err != nil {
		return nil, phaseError(PhaseMove, err)
	}

	return &Result{
		Path:         dest,
		URL:          downloadURL,
		Platform:     goos,
		Architecture: goarch,
		Verified:     verified,
		Duration:     time.Since(start),
	}, nil
}
