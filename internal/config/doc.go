// Package config reads the optional scfetch.lua settings file.
//
// The file is plain Lua run in a sandboxed gopher-lua VM. It may compute
// values but cannot run commands, open files or load other code. When a
// platform.Detector is supplied, a read-only "platform" global describes the
// host, so settings can depend on it:
//
//	shellcheck = {
//	  version     = "v0.11.0",
//	  destination = platform.is_windows and "bin/shellcheck.exe" or "bin/shellcheck",
//	  mode        = "0755",
//	  sha256      = platform.when(platform.is_linux, "sha256:..."),
//	}
//
// Every field is optional. Unknown fields are rejected. Parsing honors the
// caller's context and applies DefaultParseTimeout when it has no deadline.
package config
