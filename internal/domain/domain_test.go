package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReloadRequest(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ReloadRequest
		wantErr bool
	}{
		{name: "two lines", payload: "/proj\n/proj/scratch.py", want: ReloadRequest{WorkspacePath: "/proj", TargetFilePath: "/proj/scratch.py"}},
		{name: "trailing newline", payload: "/proj\n/proj/scratch.py\n", want: ReloadRequest{WorkspacePath: "/proj", TargetFilePath: "/proj/scratch.py"}},
		{name: "crlf", payload: "/proj\r\n/proj/scratch.py\r\n", want: ReloadRequest{WorkspacePath: "/proj", TargetFilePath: "/proj/scratch.py"}},
		{name: "trailing slash is cleaned", payload: "/proj/\n/proj/scratch.py", want: ReloadRequest{WorkspacePath: "/proj", TargetFilePath: "/proj/scratch.py"}},
		{name: "single line", payload: "/proj", wantErr: true},
		{name: "three lines", payload: "/proj\n/proj/a.py\n/proj/b.py", wantErr: true},
		{name: "empty workspace", payload: "\n/proj/a.py", wantErr: true},
		{name: "empty payload", payload: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReloadRequest(tt.payload)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyPackageEntryPoint(t *testing.T) {
	target, err := PythonLayout.Classify(ReloadRequest{
		WorkspacePath:  "/proj/myaddon",
		TargetFilePath: "/proj/myaddon/__init__.py",
	})

	require.NoError(t, err)
	assert.Equal(t, TargetModePackage, target.Mode)
	assert.Equal(t, ModuleIdentity("myaddon"), target.Identity)
	assert.Equal(t, "/proj", target.SearchRoot)
}

func TestClassifyWorkspaceAtRootUsesFilesystemRoot(t *testing.T) {
	target, err := PythonLayout.Classify(ReloadRequest{
		WorkspacePath:  "/proj",
		TargetFilePath: "/proj/__init__.py",
	})

	require.NoError(t, err)
	assert.Equal(t, ModuleIdentity("proj"), target.Identity)
	assert.Equal(t, "/", target.SearchRoot)
}

func TestClassifyStandaloneScript(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   ModuleIdentity
		root   string
	}{
		{name: "script in workspace", target: "/proj/scratch.py", want: "scratch", root: "/proj"},
		{name: "script in subdirectory", target: "/proj/tools/bake.py", want: "bake", root: "/proj/tools"},
		{name: "script outside workspace", target: "/tmp/probe.py", want: "probe", root: "/tmp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := PythonLayout.Classify(ReloadRequest{WorkspacePath: "/proj", TargetFilePath: tt.target})
			require.NoError(t, err)
			assert.Equal(t, TargetModeScript, target.Mode)
			assert.Equal(t, tt.want, target.Identity)
			assert.Equal(t, tt.root, target.SearchRoot)
		})
	}
}

func TestClassifyRejectsUnsupportedTargets(t *testing.T) {
	for _, target := range []string{
		"/proj/notes.txt",
		"/proj/myaddon/__init__.py",
		"/proj/.py",
		"/proj/script.pyc",
	} {
		t.Run(target, func(t *testing.T) {
			_, err := PythonLayout.Classify(ReloadRequest{WorkspacePath: "/proj", TargetFilePath: target})
			require.ErrorIs(t, err, ErrUnsupportedTarget)
		})
	}
}

func TestClassifyLuaLayout(t *testing.T) {
	pkg, err := LuaLayout.Classify(ReloadRequest{WorkspacePath: "/src/gizmo", TargetFilePath: "/src/gizmo/init.lua"})
	require.NoError(t, err)
	assert.Equal(t, TargetModePackage, pkg.Mode)
	assert.Equal(t, ModuleIdentity("gizmo"), pkg.Identity)

	script, err := LuaLayout.Classify(ReloadRequest{WorkspacePath: "/src/gizmo", TargetFilePath: "/src/gizmo/ui.lua"})
	require.NoError(t, err)
	assert.Equal(t, TargetModeScript, script.Mode)
	assert.Equal(t, ModuleIdentity("ui"), script.Identity)
}

func TestLayoutByName(t *testing.T) {
	layout, err := LayoutByName("")
	require.NoError(t, err)
	assert.Equal(t, LuaLayout, layout)

	layout, err = LayoutByName("Python")
	require.NoError(t, err)
	assert.Equal(t, PythonLayout, layout)

	_, err = LayoutByName("ruby")
	require.Error(t, err)
}

func TestMatchModeBoundary(t *testing.T) {
	names := map[string]bool{
		"foo":        true,
		"foo.ui":     true,
		"foo.ops.io": true,
		"foobar":     false,
		"barfoo":     false,
		"":           false,
	}

	for name, want := range names {
		assert.Equal(t, want, MatchBoundary.Matches("foo", name), name)
	}
}

func TestMatchModePrefixKeepsLegacyBehaviour(t *testing.T) {
	assert.True(t, MatchPrefix.Matches("foo", "foo"))
	assert.True(t, MatchPrefix.Matches("foo", "foo.ui"))
	assert.True(t, MatchPrefix.Matches("foo", "foobar"))
	assert.False(t, MatchPrefix.Matches("foo", "barfoo"))
}

func TestMatchEmptyIdentityMatchesNothing(t *testing.T) {
	assert.False(t, MatchBoundary.Matches("", "foo"))
	assert.False(t, MatchPrefix.Matches("", "foo"))
}

func TestParseMatchMode(t *testing.T) {
	mode, err := ParseMatchMode("")
	require.NoError(t, err)
	assert.Equal(t, MatchBoundary, mode)

	mode, err = ParseMatchMode("PREFIX")
	require.NoError(t, err)
	assert.Equal(t, MatchPrefix, mode)

	_, err = ParseMatchMode("glob")
	require.Error(t, err)
}

func TestOutcomeFailed(t *testing.T) {
	assert.False(t, Outcome{Status: OutcomeOK}.Failed())
	assert.False(t, Outcome{Status: OutcomeRegisterMissing}.Failed())
	assert.False(t, Outcome{Status: OutcomeExitRequested}.Failed())
	assert.True(t, Outcome{Status: OutcomeImportFailure}.Failed())
	assert.True(t, Outcome{Status: OutcomeUnsupportedTarget}.Failed())
}

func TestClassifySubmoduleFileInsidePackageIsScript(t *testing.T) {
	tests := []struct {
		target string
		want   ModuleIdentity
		root   string
	}{
		{target: "/proj/myaddon/ui.py", want: "ui", root: "/proj/myaddon"},
		{target: "/proj/myaddon/ops/spin.py", want: "spin", root: "/proj/myaddon/ops"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			target, err := PythonLayout.Classify(ReloadRequest{WorkspacePath: "/proj/myaddon", TargetFilePath: tt.target})
			require.NoError(t, err)
			assert.Equal(t, TargetModeScript, target.Mode)
			assert.Equal(t, tt.want, target.Identity)
			assert.Equal(t, tt.root, target.SearchRoot)
		})
	}
}
