package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

// Settings holds the values read from a scfetch.lua file. Empty fields were
// not set and fall back to flags or the release table.
type Settings struct {
	Version     string      // "v"-prefixed ShellCheck version
	Destination string      // install path
	URL         string      // archive URL override
	SHA256      string      // expected archive digest
	Mode        os.FileMode // mode for the installed executable, 0 if unset
	Platform    string      // GOOS, normalized
	Arch        string      // GOARCH, normalized
}

// Validate checks field formats. Version is expected in the form produced by
// the parser, so it is re-normalized here for settings built in Go.
func (s *Settings) Validate() error {
	if s.Version != "" {
		v, err := release.NormalizeVersion(s.Version)
		if err != nil {
			return &ValidationError{Field: luaFieldVersion, Message: err.Error()}
		}
		s.Version = v
	}

	if s.URL != "" {
		if err := validateURL(s.URL); err != nil {
			return &ValidationError{Field: luaFieldURL, Message: err.Error()}
		}
	}

	if s.SHA256 != "" && !sha256Pattern.MatchString(s.SHA256) {
		return &ValidationError{Field: luaFieldSHA256, Message: fmt.Sprintf("%q is not a hex-encoded SHA-256 digest", s.SHA256)}
	}

	if s.Mode != 0 {
		if _, err := release.CheckMode(s.Mode); err != nil {
			return &ValidationError{Field: luaFieldMode, Message: err.Error()}
		}
	}

	if strings.TrimSpace(s.Destination) != s.Destination {
		return &ValidationError{Field: luaFieldDestination, Message: "leading or trailing whitespace"}
	}

	return nil
}

// ValidationError represents a settings validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}

var sha256Pattern = regexp.MustCompile(`^(?i)(sha256:)?[0-9a-f]{64}$`)

// validateURL accepts absolute http and https URLs only.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must use https:// or http:// scheme (got: %q)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host: %s", raw)
	}

	return nil
}
