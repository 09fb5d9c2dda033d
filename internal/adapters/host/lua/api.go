package lua

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// host.register_class{name = "...", module = "..."}. module defaults to the
// module being imported or registered.
func (h *Host) luaRegisterClass(L *lua.LState) int {
	def := L.CheckTable(1)

	name := lua.LVAsString(def.RawGetString("name"))
	if name == "" {
		L.ArgError(1, "class name is required")
		return 0
	}

	moduleName := lua.LVAsString(def.RawGetString("module"))
	if moduleName == "" {
		moduleName = h.loading
		def.RawSetString("module", lua.LString(moduleName))
	}

	if existing, ok := h.classes[name]; ok {
		if existing.def == def {
			L.RaiseError("class %q is already registered", name)
		} else {
			L.RaiseError("class %q is already registered by module %q", name, existing.module)
		}
		return 0
	}

	h.classes[name] = &extensionClass{name: name, module: moduleName, def: def}

	if hook, ok := def.RawGetString("register").(*lua.LFunction); ok {
		L.Push(hook)
		L.Push(def)
		if err := L.PCall(1, 0, nil); err != nil {
			delete(h.classes, name)
			L.RaiseError("class %q register hook: %s", name, err.Error())
		}
	}

	return 0
}

func (h *Host) luaUnregisterClass(L *lua.LState) int {
	name := L.CheckString(1)
	if err := h.unregisterClass(L.Context(), name); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (h *Host) luaIsRegistered(L *lua.LState) int {
	_, ok := h.classes[L.CheckString(1)]
	L.Push(lua.LBool(ok))
	return 1
}

func (h *Host) luaClasses(L *lua.LState) int {
	names := make([]string, 0, len(h.classes))
	for name := range h.classes {
		names = append(names, name)
	}
	sort.Strings(names)

	result := L.CreateTable(len(names), 0)
	for _, name := range names {
		result.Append(lua.LString(name))
	}
	L.Push(result)
	return 1
}

func (h *Host) luaScenes(L *lua.LState) int {
	L.Push(lua.LNumber(len(h.scenes)))
	return 1
}

func (h *Host) luaNewScene(L *lua.LState) int {
	name := L.CheckString(1)
	for _, scene := range h.scenes {
		if scene == name {
			L.RaiseError("scene %q already exists", name)
			return 0
		}
	}
	h.scenes = append(h.scenes, name)
	h.liveScenes.Store(int64(len(h.scenes)))
	return 0
}

func (h *Host) luaRemoveScene(L *lua.LState) int {
	name := L.CheckString(1)
	for i, scene := range h.scenes {
		if scene == name {
			h.scenes = append(h.scenes[:i], h.scenes[i+1:]...)
			h.liveScenes.Store(int64(len(h.scenes)))
			L.Push(lua.LTrue)
			return 1
		}
	}
	L.Push(lua.LFalse)
	return 1
}

func (h *Host) luaLog(L *lua.LState) int {
	h.logger.Info(L.CheckString(1), "source", "lua", "module", h.loading)
	return 0
}

// os.exit must not end the host process; it unwinds the current call instead.
func (h *Host) luaExit(L *lua.LState) int {
	h.exitRequested = true
	L.RaiseError("os.exit(%s) intercepted", lua.LVAsString(L.Get(1)))
	return 0
}
