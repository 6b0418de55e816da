package config

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/ZebulonRouseFrantzich/scfetch/internal/logging"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/platform"
	"github.com/ZebulonRouseFrantzich/scfetch/internal/release"
)

// Parser represents a Lua settings parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   logging.Logger
}

// NewParser creates a new settings parser with the given platform detector.
// A nil detector leaves the platform global undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: logging.Nop()}
}

// WithLogger sets the logger used for parse diagnostics.
func (p *Parser) WithLogger(l logging.Logger) *Parser {
	if l != nil {
		p.logger = l
	}
	return p
}

// ParseFile reads and parses the settings file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Settings, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("read config: %s is a directory", path)
	}
	if fi.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s is %d bytes, maximum is %d", path, fi.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	p.logger.Debug("parsing config file", "path", path, "bytes", len(data))
	return p.ParseString(ctx, string(data))
}

// ParseString parses Lua settings from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Settings, error) {
	if len(luaCode) > MaxConfigSize {
		return nil, &ParseError{
			Message: "config too large",
			Detail:  fmt.Sprintf("%d bytes, maximum is %d", len(luaCode), MaxConfigSize),
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("evaluate config: %w", ctxErr)
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractSettings(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractSettings reads the global "shellcheck" table. A file that does not
// define it yields empty settings.
func extractSettings(L *lua.LState) (*Settings, error) {
	global := L.GetGlobal(luaGlobalShellcheck)
	if global.Type() == lua.LTNil {
		return &Settings{}, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'shellcheck' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	var unknown []string
	table.ForEach(func(key, _ lua.LValue) {
		if k, ok := key.(lua.LString); !ok || !knownFields[string(k)] {
			unknown = append(unknown, key.String())
		}
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &ParseError{
			Message: "unknown field in 'shellcheck' table",
			Detail:  strings.Join(unknown, ", "),
		}
	}

	s, err := readFields(table)
	if err == nil {
		err = s.Validate()
	}
	if err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return s, nil
}

func readFields(table *lua.LTable) (*Settings, error) {
	s := &Settings{}
	var err error

	if s.Version, err = optString(table, luaFieldVersion); err != nil {
		return nil, err
	}
	if s.Destination, err = optString(table, luaFieldDestination); err != nil {
		return nil, err
	}
	if s.URL, err = optString(table, luaFieldURL); err != nil {
		return nil, err
	}
	if s.SHA256, err = optString(table, luaFieldSHA256); err != nil {
		return nil, err
	}
	if s.Platform, err = optString(table, luaFieldPlatform); err != nil {
		return nil, err
	}
	if s.Arch, err = optString(table, luaFieldArch); err != nil {
		return nil, err
	}
	if s.Mode, err = extractMode(table.RawGetString(luaFieldMode)); err != nil {
		return nil, err
	}

	if s.Platform != "" {
		s.Platform = platform.NormalizeOS(s.Platform)
	}
	if s.Arch != "" {
		s.Arch = platform.NormalizeArch(s.Arch)
	}
	return s, nil
}

// optString returns the string at field, or "" when it is nil.
func optString(table *lua.LTable, field string) (string, error) {
	v := table.RawGetString(field)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return v.String(), nil
	default:
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("expected string, got %s", v.Type())}
	}
}

// extractMode accepts an octal string ("0755") or a number whose decimal
// digits are read as octal (755). Lua has no octal literals.
func extractMode(v lua.LValue) (os.FileMode, error) {
	var raw string
	switch v.Type() {
	case lua.LTNil:
		return 0, nil
	case lua.LTString:
		raw = v.String()
	case lua.LTNumber:
		n := float64(v.(lua.LNumber))
		if n != math.Trunc(n) || n < 0 {
			return 0, &ValidationError{Field: luaFieldMode, Message: fmt.Sprintf("%v is not a whole number", n)}
		}
		raw = strconv.FormatInt(int64(n), 10)
	default:
		return 0, &ValidationError{Field: luaFieldMode, Message: fmt.Sprintf("expected string or number, got %s", v.Type())}
	}

	mode, err := release.ParseMode(raw)
	if err != nil {
		return 0, &ValidationError{Field: luaFieldMode, Message: err.Error()}
	}
	return mode, nil
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
