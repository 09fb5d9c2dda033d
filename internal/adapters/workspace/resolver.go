package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/spf13/afero"
)

var ErrNoEntryPoint = errors.New("workspace has no package entry point")

// Resolver maps an edited file to the workspace the bridge should see, the way
// an editor reports the folder it has open.
type Resolver struct {
	Fs     afero.Fs
	Layout domain.Layout
}

func NewResolver(fs afero.Fs, layout domain.Layout) Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return Resolver{Fs: fs, Layout: layout}
}

// Root returns the outermost directory above file that still holds the
// layout entry point, so nested sub-packages resolve to the add-on root. When
// no entry point exists the file's own directory is the workspace.
func (r Resolver) Root(file string) (string, error) {
	file, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", file, err)
	}

	dir := filepath.Dir(file)
	root := dir
	for current := dir; ; current = filepath.Dir(current) {
		ok, err := r.hasEntryPoint(current)
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		root = current

		if filepath.Dir(current) == current {
			break
		}
	}

	return root, nil
}

// EntryPoint returns the package entry file of workspace.
func (r Resolver) EntryPoint(workspace string) (string, error) {
	ok, err := r.hasEntryPoint(workspace)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoEntryPoint, workspace)
	}

	return filepath.Join(workspace, r.Layout.EntryPoint), nil
}

func (r Resolver) hasEntryPoint(dir string) (bool, error) {
	info, err := r.Fs.Stat(filepath.Join(dir, r.Layout.EntryPoint))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat entry point in %s: %w", dir, err)
	}

	return !info.IsDir(), nil
}
