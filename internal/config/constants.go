package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalShellcheck = "shellcheck"
	luaFieldVersion     = "version"
	luaFieldDestination = "destination"
	luaFieldURL         = "url"
	luaFieldSHA256      = "sha256"
	luaFieldMode        = "mode"
	luaFieldPlatform    = "platform"
	luaFieldArch        = "arch"
)

// knownFields lists every key accepted in the shellcheck table.
var knownFields = map[string]bool{
	luaFieldVersion:     true,
	luaFieldDestination: true,
	luaFieldURL:         true,
	luaFieldSHA256:      true,
	luaFieldMode:        true,
	luaFieldPlatform:    true,
	luaFieldArch:        true,
}

const (
	// DefaultFileName is the settings file looked up in the working directory.
	DefaultFileName = "scfetch.lua"

	// MaxConfigSize bounds the size of a settings file.
	MaxConfigSize = 1 << 20

	// DefaultParseTimeout applies when the caller's context has no deadline.
	DefaultParseTimeout = 5 * time.Second
)
