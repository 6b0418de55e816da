package binary

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// fakeBinary is the content of every shellcheck executable in the fixtures.
const fakeBinary = "#!/bin/sh\necho 'ShellCheck - shell script analysis tool'\n"

type archiveEntry struct {
	Name     string
	Body     string
	Mode     int64
	Typeflag byte
}

// releaseEntries mirrors the layout of a published Unix release: one
// top-level directory holding the executable and its documents.
func releaseEntries(version string) []archiveEntry {
	dir := "shellcheck-" + version + "/"
	return []archiveEntry{
		{Name: dir, Mode: 0o755, Typeflag: tar.TypeDir},
		{Name: dir + "LICENSE.txt", Body: "GPLv3", Mode: 0o644},
		{Name: dir + "README.txt", Body: "readme", Mode: 0o644},
		{Name: dir + "shellcheck", Body: fakeBinary, Mode: 0o755},
	}
}

// windowsEntries mirrors the Windows release zip, which has no top-level
// directory.
func windowsEntries() []archiveEntry {
	return []archiveEntry{
		{Name: "LICENSE.txt", Body: "GPLv3", Mode: 0o644},
		{Name: "README.txt", Body: "readme", Mode: 0o644},
		{Name: "shellcheck.exe", Body: fakeBinary, Mode: 0o755},
	}
}

func writeTar(t *testing.T, w io.Writer, entries []archiveEntry) {
	t.Helper()

	tw := tar.NewWriter(w)
	for _, e := range entries {
		typeflag := e.Typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		hdr := &tar.Header{
			Name:     e.Name,
			Mode:     e.Mode,
			Typeflag: typeflag,
		}
		if typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.Body))
		}
		if typeflag == tar.TypeSymlink {
			hdr.Linkname = e.Body
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}

func buildTar(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	writeTar(t, &buf, entries)
	return buf.Bytes()
}

func buildTarXz(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	writeTar(t, xw, entries)
	require.NoError(t, xw.Close())
	return buf.Bytes()
}

func buildTarGz(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	writeTar(t, gw, entries)
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, entries []archiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		fh := &zip.FileHeader{Name: e.Name, Method: zip.Deflate}
		fh.SetMode(0o644)
		if e.Mode != 0 {
			fh.SetMode(os.FileMode(e.Mode))
		}
		w, err := zw.CreateHeader(fh)
		require.NoError(t, err)
		_, err = w.Write([]byte(e.Body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
