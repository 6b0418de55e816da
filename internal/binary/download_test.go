package binary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDownloader returns a Downloader on the OS filesystem with a
// backoff short enough for tests.
func newTestDownloader(retries int) *Downloader {
	d := NewDownloader(nil, WithRetries(retries))
	d.backoff = time.Millisecond
	return d
}

func TestDownloaderFetchToFile(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{
			name:       "successful_download",
			statusCode: http.StatusOK,
			body:       "test archive content",
		},
		{
			name:       "404_not_found",
			statusCode: http.StatusNotFound,
			body:       "not found",
			wantErr:    true,
		},
		{
			name:       "500_server_error",
			statusCode: http.StatusInternalServerError,
			body:       "server error",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			destPath := filepath.Join(t.TempDir(), "test-file")
			err := newTestDownloader(1).FetchToFile(context.Background(), server.URL, destPath)

			if tt.wantErr {
				require.Error(t, err)
				assert.NoFileExists(t, destPath)
				assert.NoFileExists(t, destPath+".tmp")
				return
			}

			require.NoError(t, err)
			content, err := os.ReadFile(destPath)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(content))
			assert.NoFileExists(t, destPath+".tmp")
		})
	}
}

func TestDownloaderRetryLogic(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "test-file")
	err := newTestDownloader(3).FetchToFile(context.Background(), server.URL, destPath)

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	content, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, "success", string(content))
}

func TestDownloaderNoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := newTestDownloader(3).FetchToFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "f"))

	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.code)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestDownloaderNoRetryOnPermanentError(t *testing.T) {
	tlsServer := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("unreachable"))
	}))
	defer tlsServer.Close()

	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{name: "unsupported_scheme", url: "ftp://example.invalid/sc.tar.xz", wantMsg: "unsupported protocol scheme"},
		{name: "malformed_url", url: "http://[::1", wantMsg: "create request"},
		// The default client does not trust the test server's certificate.
		{name: "untrusted_certificate", url: tlsServer.URL, wantMsg: "certificate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDownloader(3)
			d.backoff = time.Hour
			dest := filepath.Join(t.TempDir(), "f")

			done := make(chan error, 1)
			go func() {
				done <- d.FetchToFile(context.Background(), tt.url, dest)
			}()

			select {
			case err := <-done:
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
				assert.NotContains(t, err.Error(), "retries")
			case <-time.After(10 * time.Second):
				t.Fatal("FetchToFile retried a permanent error")
			}
		})
	}
}

func TestDownloaderRetriesConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	err := newTestDownloader(1).FetchToFile(context.Background(), addr, filepath.Join(t.TempDir(), "f"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1 retries")
}

func TestDownloaderRetriesTooManyRequests(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := newTestDownloader(2).FetchToFile(context.Background(), server.URL, filepath.Join(t.TempDir(), "f"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestDownloaderContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := newTestDownloader(3).FetchToFile(ctx, server.URL, filepath.Join(t.TempDir(), "f"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestDownloaderShortBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("truncated"))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "f")
	err := newTestDownloader(0).FetchToFile(context.Background(), server.URL, destPath)

	require.Error(t, err)
	assert.NoFileExists(t, destPath)
}

func TestDownloaderCreatesNestedDirectories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("test"))
	}))
	defer server.Close()

	deepPath := filepath.Join(t.TempDir(), "a", "b", "c", "file.txt")
	require.NoError(t, newTestDownloader(0).FetchToFile(context.Background(), server.URL, deepPath))
	assert.FileExists(t, deepPath)
}

func TestDownloaderRedirectHandling(t *testing.T) {
	var redirects atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n := redirects.Load(); n < 3 {
			redirects.Add(1)
			http.Redirect(w, r, fmt.Sprintf("/redirect-%d", n+1), http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("final content"))
	}))
	defer server.Close()

	destPath := filepath.Join(t.TempDir(), "redirected")
	require.NoError(t, newTestDownloader(0).FetchToFile(context.Background(), server.URL, destPath))

	content, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, "final content", string(content))
	assert.Equal(t, int32(3), redirects.Load())
}

func TestDownloaderWritesThroughFs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("in memory"))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	d := NewDownloader(fs, WithHTTPClient(server.Client()))

	require.NoError(t, d.FetchToFile(context.Background(), server.URL, "/work/archive"))

	content, err := afero.ReadFile(fs, "/work/archive")
	require.NoError(t, err)
	assert.Equal(t, "in memory", string(content))
}
