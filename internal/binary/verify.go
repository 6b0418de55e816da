package binary

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// verifySHA256 compares the SHA-256 digest of the file at path with expected.
// The comparison ignores case and an optional "sha256:" prefix.
func verifySHA256(fs afero.Fs, path, expected string) error {
	want := strings.ToLower(strings.TrimSpace(expected))
	want = strings.TrimPrefix(want, "sha256:")
	if len(want) != sha256.Size*2 {
		return fmt.Errorf("expected digest %q is not a hex-encoded SHA-256", expected)
	}
	if _, err := hex.DecodeString(want); err != nil {
		return fmt.Errorf("expected digest %q is not a hex-encoded SHA-256", expected)
	}

	actual, err := calculateSHA256(fs, path)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	if actual != want {
		return fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s", actual, want)
	}
	return nil
}

// calculateSHA256 calculates the SHA256 checksum of a file
func calculateSHA256(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
