package binary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/logging"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "scfetch/1.0"
)

// statusError is returned for non-200 responses.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// retryable reports whether another attempt could succeed. Client errors
// (4xx) are final.
func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// permanentError marks a failure that another attempt cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// retryable reports whether a failed attempt is worth repeating. Timeouts,
// dial and connection errors, dropped bodies, 5xx and 429 are. Bad URLs,
// unsupported schemes, TLS verification failures and other 4xx are not.
func retryable(err error) bool {
	var pe *permanentError
	if errors.As(err, &pe) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		if ue.Timeout() {
			return true
		}
		var opErr *net.OpError
		return errors.As(ue.Err, &opErr) ||
			errors.Is(ue.Err, io.EOF) ||
			errors.Is(ue.Err, io.ErrUnexpectedEOF)
	}
	return true
}

// Downloader handles HTTP downloads with retry logic
type Downloader struct {
	client    *http.Client
	fs        afero.Fs
	logger    logging.Logger
	userAgent string
	retries   int
	backoff   time.Duration
}

// DownloaderOption customizes a Downloader.
type DownloaderOption func(*Downloader)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithRetries sets how many times a failed download is retried.
func WithRetries(n int) DownloaderOption {
	return func(d *Downloader) { d.retries = n }
}

// WithDownloadLogger sets the logger used for progress messages.
func WithDownloadLogger(l logging.Logger) DownloaderOption {
	return func(d *Downloader) { d.logger = l }
}

// NewDownloader creates a downloader that writes through fs.
// A nil fs means the OS filesystem.
func NewDownloader(fs afero.Fs, opts ...DownloaderOption) *Downloader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	d := &Downloader{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// GitHub release assets redirect to a CDN.
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		fs:        fs,
		logger:    logging.Nop(),
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
		backoff:   time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FetchToFile downloads url to destPath. The file is written to a sibling
// temporary path and renamed into place only once the body is complete.
func (d *Downloader) FetchToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			wait := d.backoff << uint(attempt-1)
			d.logger.Debug("retrying download", "url", url, "attempt", attempt, "wait", wait.String())
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.downloadOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !retryable(err) {
			return err
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

// downloadOnce performs a single download attempt
func (d *Downloader) downloadOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &permanentError{fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	if err := d.fs.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := d.fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			d.fs.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}
	if resp.ContentLength > 0 && n != resp.ContentLength {
		return fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := d.fs.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	d.logger.Debug("download complete", "url", url, "size", humanize.Bytes(uint64(n)))
	return nil
}
