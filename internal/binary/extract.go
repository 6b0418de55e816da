package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/mholt/archives"
	"github.com/spf13/afero"
)

// errNoMatchingEntries is returned when an archive holds no file that passes
// the extraction filter.
var errNoMatchingEntries = errors.New("no matching entries in archive")

// Extractor handles archive extraction. The format is detected from the
// file's magic bytes, not its name.
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates an extractor that reads and writes through fs.
// A nil fs means the OS filesystem.
func NewExtractor(fs afero.Fs) *Extractor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Extractor{fs: fs}
}

// Extract unpacks the regular files of archivePath that pass opts into
// outputDir. Supported formats: tar.xz, tar.gz, tar and zip.
func (e *Extractor) Extract(ctx context.Context, archivePath, outputDir string, opts ExtractOptions) ([]string, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	kind, err := filetype.MatchReader(f)
	if err != nil {
		return nil, fmt.Errorf("detect archive format: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind archive: %w", err)
	}

	if err := e.fs.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var extracted []string
	handler := e.handleFile(outputDir, opts, &extracted)

	switch kind.MIME.Value {
	case "application/x-xz":
		err = extractCompressedTar(ctx, archives.Xz{}, f, handler)
	case "application/gzip":
		err = extractCompressedTar(ctx, archives.Gz{}, f, handler)
	case "application/x-tar":
		err = archives.Tar{}.Extract(ctx, f, handler)
	case "application/zip":
		// Zip needs random access; afero.File is an io.ReaderAt and io.Seeker.
		err = archives.Zip{}.Extract(ctx, f, handler)
	default:
		if kind == filetype.Unknown {
			return nil, fmt.Errorf("unrecognized archive format")
		}
		return nil, fmt.Errorf("unsupported archive format: %s", kind.MIME.Value)
	}
	if err != nil {
		return nil, fmt.Errorf("extract %s archive: %w", kind.Extension, err)
	}

	if len(extracted) == 0 {
		return nil, errNoMatchingEntries
	}
	return extracted, nil
}

func extractCompressedTar(ctx context.Context, dec archives.Decompressor, r io.Reader, handler archives.FileHandler) error {
	rc, err := dec.OpenReader(r)
	if err != nil {
		return fmt.Errorf("open decompressor: %w", err)
	}
	defer rc.Close()

	return archives.Tar{}.Extract(ctx, rc, handler)
}

// handleFile writes each selected regular file below outputDir and records
// its path in out. Directories, links and special files are skipped.
func (e *Extractor) handleFile(outputDir string, opts ExtractOptions, out *[]string) archives.FileHandler {
	root := filepath.Clean(outputDir)

	return func(ctx context.Context, info archives.FileInfo) error {
		if !info.Mode().IsRegular() {
			return nil
		}

		name := stripComponents(info.NameInArchive, opts.StripComponents)
		if name == "" {
			return nil
		}
		if opts.Filter != nil && !opts.Filter(name) {
			return nil
		}

		// Security check: prevent path traversal
		target := filepath.Join(root, filepath.FromSlash(name))
		if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("illegal file path: %s", info.NameInArchive)
		}

		if err := e.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create parent dir for %s: %w", name, err)
		}

		src, err := info.Open()
		if err != nil {
			return fmt.Errorf("open entry %s: %w", info.NameInArchive, err)
		}
		defer src.Close()

		dst, err := e.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0o600)
		if err != nil {
			return fmt.Errorf("create file %s: %w", name, err)
		}

		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			return fmt.Errorf("write file %s: %w", name, err)
		}
		if err := dst.Close(); err != nil {
			return fmt.Errorf("close file %s: %w", name, err)
		}

		*out = append(*out, target)
		return nil
	}
}

// stripComponents drops the first n elements of an archive entry name.
// A name with n or fewer elements keeps only its last element, so a file at
// the archive root survives a strip of one.
func stripComponents(name string, n int) string {
	name = path.Clean(strings.ReplaceAll(name, `\`, "/"))
	name = strings.TrimPrefix(name, "/")
	if name == "." || name == "" {
		return ""
	}

	parts := strings.Split(name, "/")
	if n <= 0 {
		return name
	}
	if len(parts) <= n {
		return parts[len(parts)-1]
	}
	return strings.Join(parts[n:], "/")
}
