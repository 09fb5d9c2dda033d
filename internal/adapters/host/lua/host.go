package lua

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/bnema/addon-bridge/internal/ports"
	lua "github.com/yuin/gopher-lua"
)

const (
	hostModuleName   = "host"
	defaultSceneName = "Scene"
	loadedRegistry   = "_LOADED"
)

var ErrHostClosed = errors.New("lua host is closed")

// Host is an embedded Lua interpreter acting as the content-creation host.
// Every access to the interpreter goes through mu; Lua callbacks run while the
// calling Go method already holds it. Liveness reads only the atomics, so it
// keeps answering while add-on code holds mu.
type Host struct {
	liveScenes atomic.Int64
	shutDown   atomic.Bool

	mu     sync.Mutex
	state  *lua.LState
	logger *slog.Logger

	classes map[string]*extensionClass
	scenes  []string
	paths   []string

	loading       string
	exitRequested bool
	closed        bool
}

type extensionClass struct {
	name   string
	module string
	def    *lua.LTable
}

var (
	_ ports.Host     = (*Host)(nil)
	_ ports.Liveness = (*Host)(nil)
)

func New(logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Host{
		state:   lua.NewState(),
		logger:  logger,
		classes: map[string]*extensionClass{},
		scenes:  []string{defaultSceneName},
	}
	h.liveScenes.Store(int64(len(h.scenes)))
	h.install()

	return h
}

func (h *Host) install() {
	L := h.state

	L.RegisterModule(hostModuleName, map[string]lua.LGFunction{
		"register_class":   h.luaRegisterClass,
		"unregister_class": h.luaUnregisterClass,
		"is_registered":    h.luaIsRegistered,
		"classes":          h.luaClasses,
		"scenes":           h.luaScenes,
		"new_scene":        h.luaNewScene,
		"remove_scene":     h.luaRemoveScene,
		"log":              h.luaLog,
	})

	if osModule, ok := L.GetGlobal("os").(*lua.LTable); ok {
		osModule.RawSetString("exit", L.NewFunction(h.luaExit))
	}

	h.syncPackagePath()
}

func (h *Host) Classes(ctx context.Context) ([]domain.ExtensionClass, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	names := make([]string, 0, len(h.classes))
	for name := range h.classes {
		names = append(names, name)
	}
	sort.Strings(names)

	classes := make([]domain.ExtensionClass, 0, len(names))
	for _, name := range names {
		classes = append(classes, domain.ExtensionClass{Name: name, Module: h.classes[name].module})
	}

	return classes, nil
}

func (h *Host) Unregister(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	return h.unregisterClass(ctx, name)
}

func (h *Host) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	var keys []string
	h.loadedTable().ForEach(func(key, _ lua.LValue) {
		if name, ok := key.(lua.LString); ok {
			keys = append(keys, string(name))
		}
	})
	sort.Strings(keys)

	return keys, nil
}

func (h *Host) Evict(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	loaded := h.loadedTable()
	if loaded.RawGetString(key) == lua.LNil {
		return fmt.Errorf("%w: %s", ports.ErrModuleNotCached, key)
	}
	loaded.RawSetString(key, lua.LNil)

	return nil
}

func (h *Host) Contains(dir string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Contains(h.paths, filepath.Clean(dir))
}

func (h *Host) Append(dir string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	cleaned := filepath.Clean(dir)
	if slices.Contains(h.paths, cleaned) {
		return nil
	}
	h.paths = append(h.paths, cleaned)
	h.syncPackagePath()

	return nil
}

func (h *Host) SearchPath() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return slices.Clone(h.paths)
}

// Import runs require(name). A module table exposing a register function is
// returned as a ports.Loadable.
func (h *Host) Import(ctx context.Context, name domain.ModuleIdentity) (ports.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	h.loading = string(name)
	defer func() { h.loading = "" }()

	if err := h.call(ctx, h.state.GetGlobal("require"), 1, lua.LString(name)); err != nil {
		return nil, err
	}
	ret := h.state.Get(-1)
	h.state.Pop(1)

	base := module{name: string(name)}
	table, ok := ret.(*lua.LTable)
	if !ok {
		return base, nil
	}
	register, ok := table.RawGetString("register").(*lua.LFunction)
	if !ok {
		return base, nil
	}

	return &loadableModule{module: base, host: h, register: register}, nil
}

func (h *Host) Alive(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if h.shutDown.Load() {
		return 0, ErrHostClosed
	}

	return int(h.liveScenes.Load()), nil
}

// RunFile executes a startup script in the global environment.
func (h *Host) RunFile(ctx context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	fn, err := h.state.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load startup script %s: %w", path, err)
	}

	return h.call(ctx, fn, 0)
}

// Exec runs a chunk of Lua source in the global environment.
func (h *Host) Exec(ctx context.Context, source string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}

	fn, err := h.state.LoadString(source)
	if err != nil {
		return fmt.Errorf("compile chunk: %w", err)
	}

	return h.call(ctx, fn, 0)
}

// Close drops every scene, so liveness reports the host as gone, and closes the
// interpreter.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.shutDown.Store(true)
	h.scenes = nil
	h.liveScenes.Store(0)
	h.state.Close()

	return nil
}

func (h *Host) call(ctx context.Context, fn lua.LValue, nret int, args ...lua.LValue) error {
	if ctx != nil && ctx.Done() != nil && h.state.Context() == nil {
		h.state.SetContext(ctx)
		defer h.state.RemoveContext()
	}

	h.exitRequested = false
	err := h.state.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, args...)
	exitRequested := h.exitRequested
	h.exitRequested = false

	// An exit caught by pcall inside the add-on leaves err nil.
	if err != nil && exitRequested {
		return fmt.Errorf("%w: %w", ports.ErrExitRequested, err)
	}

	return err
}

func (h *Host) unregisterClass(ctx context.Context, name string) error {
	class, ok := h.classes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ports.ErrClassNotRegistered, name)
	}

	if hook, ok := class.def.RawGetString("unregister").(*lua.LFunction); ok {
		if err := h.call(ctx, hook, 0, class.def); err != nil {
			return fmt.Errorf("class %s unregister hook: %w", name, err)
		}
	}
	delete(h.classes, name)

	return nil
}

func (h *Host) loadedTable() *lua.LTable {
	loaded, ok := h.state.GetField(h.state.Get(lua.RegistryIndex), loadedRegistry).(*lua.LTable)
	if !ok {
		loaded = h.state.NewTable()
		h.state.SetField(h.state.Get(lua.RegistryIndex), loadedRegistry, loaded)
	}
	return loaded
}

func (h *Host) syncPackagePath() {
	patterns := make([]string, 0, len(h.paths)*2)
	for _, dir := range h.paths {
		patterns = append(patterns,
			filepath.Join(dir, "?.lua"),
			filepath.Join(dir, "?", domain.LuaLayout.EntryPoint),
		)
	}

	if pkg, ok := h.state.GetGlobal("package").(*lua.LTable); ok {
		pkg.RawSetString("path", lua.LString(strings.Join(patterns, ";")))
	}
}

type module struct {
	name string
}

func (m module) Name() string {
	return m.name
}

type loadableModule struct {
	module
	host     *Host
	register *lua.LFunction
}

func (m *loadableModule) Register(ctx context.Context) error {
	m.host.mu.Lock()
	defer m.host.mu.Unlock()

	if m.host.closed {
		return ErrHostClosed
	}

	m.host.loading = m.name
	defer func() { m.host.loading = "" }()

	return m.host.call(ctx, m.register, 0)
}
