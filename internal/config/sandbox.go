package config

import (
	lua "github.com/yuin/gopher-lua"
)

// sandboxLuaVM strips a Lua VM down to pure computation. Settings files may
// not run commands, touch the filesystem, load other code or tamper with
// metatables:
//   - os and io are removed entirely
//   - require, module, package, dofile, loadfile, load and loadstring are
//     removed
//   - debug, getmetatable, setmetatable, rawget, rawset, rawequal and
//     collectgarbage are removed
//
// string, table, math and the basic helpers (type, tostring, pairs, ...)
// stay available.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range []string{
		"os",
		"io",
		"require",
		"module",
		"package",
		"dofile",
		"loadfile",
		"load",
		"loadstring",
		"debug",
		"getmetatable",
		"setmetatable",
		"rawget",
		"rawset",
		"rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM creates a Lua VM with sandboxing applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState(lua.Options{
		CallStackSize: 256,
		RegistrySize:  1024 * 8,
	})
	sandboxLuaVM(L)
	return L
}
