package ports

import (
	"context"
	"errors"

	"github.com/bnema/addon-bridge/internal/domain"
)

var (
	ErrExitRequested      = errors.New("add-on requested process exit")
	ErrModuleNotCached    = errors.New("module not cached")
	ErrClassNotRegistered = errors.New("class not registered")
)

// TypeRegistry is the host's global registry of extension classes.
type TypeRegistry interface {
	Classes(ctx context.Context) ([]domain.ExtensionClass, error)
	Unregister(ctx context.Context, name string) error
}

// ModuleCache is the host's in-memory table of imported modules.
type ModuleCache interface {
	Keys(ctx context.Context) ([]string, error)
	Evict(ctx context.Context, key string) error
}

type SearchPath interface {
	Contains(dir string) bool
	Append(dir string) error
}

type Module interface {
	Name() string
}

// Loadable is implemented by modules exposing the register() entry point.
type Loadable interface {
	Module
	Register(ctx context.Context) error
}

type Importer interface {
	Import(ctx context.Context, name domain.ModuleIdentity) (Module, error)
}

// Liveness reports how many live scenes the host holds. Zero means the host is
// gone.
type Liveness interface {
	Alive(ctx context.Context) (int, error)
}

// Host bundles every collaborator the reload protocol drives.
type Host interface {
	TypeRegistry
	ModuleCache
	SearchPath
	Importer
}
