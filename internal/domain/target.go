package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ModuleIdentity string

type TargetMode string

const (
	TargetModePackage TargetMode = "package"
	TargetModeScript  TargetMode = "script"
)

type Target struct {
	Mode       TargetMode
	Identity   ModuleIdentity
	SearchRoot string
}

// Layout names the file conventions of a host's add-on sources.
type Layout struct {
	Name       string
	EntryPoint string
	Extension  string
}

var (
	PythonLayout = Layout{Name: "python", EntryPoint: "__init__.py", Extension: ".py"}
	LuaLayout    = Layout{Name: "lua", EntryPoint: "init.lua", Extension: ".lua"}
)

func LayoutByName(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LuaLayout.Name:
		return LuaLayout, nil
	case PythonLayout.Name:
		return PythonLayout, nil
	default:
		return Layout{}, fmt.Errorf("unknown layout %q", name)
	}
}

// Classify decides how a request is loaded. Package mode is decided by path
// and file name equality only; the file contents are never inspected.
func (l Layout) Classify(req ReloadRequest) (Target, error) {
	parentDir, fileName := filepath.Split(req.TargetFilePath)
	parentDir = filepath.Clean(parentDir)

	switch {
	case fileName == l.EntryPoint && parentDir == req.WorkspacePath:
		return Target{
			Mode:       TargetModePackage,
			Identity:   ModuleIdentity(filepath.Base(parentDir)),
			SearchRoot: filepath.Dir(req.WorkspacePath),
		}, nil
	case fileName == l.EntryPoint:
		return Target{}, fmt.Errorf("%w: %s is a nested package entry point", ErrUnsupportedTarget, req.TargetFilePath)
	case strings.HasSuffix(fileName, l.Extension) && len(fileName) > len(l.Extension):
		return Target{
			Mode:       TargetModeScript,
			Identity:   ModuleIdentity(strings.TrimSuffix(fileName, l.Extension)),
			SearchRoot: parentDir,
		}, nil
	default:
		return Target{}, fmt.Errorf("%w: %s is not a %s file", ErrUnsupportedTarget, req.TargetFilePath, l.Extension)
	}
}

func (l Layout) IsSource(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, l.Extension) && len(name) > len(l.Extension)
}
