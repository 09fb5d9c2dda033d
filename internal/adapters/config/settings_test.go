package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	settings, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), settings)
	assert.Equal(t, "127.0.0.1:3264", settings.Server.Addr())
}

func TestLoadReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".addon-bridge", "config.toml"), path)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("[server]\nport = 4100\n"), 0o600))

	settings, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, 4100, settings.Server.Port)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
version = 1

[server]
host = "127.0.0.2"
port = 4000
read_timeout = "5s"

[watchdog]
interval = "2s"

[reload]
match = "prefix"
layout = "python"
startup = "/opt/host/startup.lua"

[watch]
debounce = "50ms"
package = true
`)

	settings, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Server:   ServerSettings{Host: "127.0.0.2", Port: 4000, ReadTimeout: 5 * time.Second},
		Watchdog: WatchdogSettings{Interval: 2 * time.Second},
		Reload:   ReloadSettings{Match: domain.MatchPrefix, Layout: domain.PythonLayout, Startup: "/opt/host/startup.lua"},
		Watch:    WatchSettings{Debounce: 50 * time.Millisecond, Package: true},
	}, settings)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 4000\n")
	t.Setenv("BRIDGE_SERVER_PORT", "4500")
	t.Setenv("BRIDGE_WATCHDOG_INTERVAL", "1m")

	settings, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 4500, settings.Server.Port)
	assert.Equal(t, time.Minute, settings.Watchdog.Interval)
}

func TestLoadExplicitValueOverridesEverything(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 4000\n")
	t.Setenv("BRIDGE_SERVER_PORT", "4500")

	cfg := viper.New()
	cfg.Set(KeyServerPort, 4600)

	settings, err := Load(cfg, path)
	require.NoError(t, err)
	assert.Equal(t, 4600, settings.Server.Port)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 70000

[watchdog]
interval = "soon"

[reload]
match = "glob"
layout = "ruby"
`)

	_, err := Load(viper.New(), path)
	require.ErrorIs(t, err, ErrInvalidSettings)
	assert.Contains(t, err.Error(), KeyServerPort)
	assert.Contains(t, err.Error(), KeyWatchdogInterval)
	assert.Contains(t, err.Error(), KeyReloadMatch)
	assert.Contains(t, err.Error(), KeyReloadLayout)
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	path := writeConfig(t, "version = 2\n")

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config schema version 2")
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := Defaults()
	want.Server.Port = 4242
	want.Reload.Layout = domain.PythonLayout

	require.NoError(t, Write(path, want, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".config-*.toml.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWriteKeepsExistingFile(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 4000\n")

	err := Write(path, Defaults(), false)
	require.ErrorIs(t, err, ErrConfigExists)

	require.NoError(t, Write(path, Defaults(), true))
	settings, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 3264, settings.Server.Port)
}

func TestEncodeDefaults(t *testing.T) {
	data, err := Encode(Defaults())
	require.NoError(t, err)

	output := string(data)
	assert.Contains(t, output, "version = 1")
	assert.Contains(t, output, "port = 3264")
	assert.Contains(t, output, "[watchdog]")
	assert.Contains(t, output, "8s")
	assert.Contains(t, output, "boundary")
	assert.NotContains(t, output, "startup")
}

func TestLoadRestrictsHostToLoopback(t *testing.T) {
	tests := []struct {
		host    string
		wantErr bool
	}{
		{host: "127.0.0.1"},
		{host: "127.0.0.2"},
		{host: "::1"},
		{host: "localhost"},
		{host: "0.0.0.0", wantErr: true},
		{host: "192.168.1.5", wantErr: true},
		{host: "::", wantErr: true},
		{host: "example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			cfg := viper.New()
			cfg.Set(KeyServerHost, tt.host)

			settings, err := Load(cfg, "")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidSettings)
				assert.Contains(t, err.Error(), "not a loopback address")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.host, settings.Server.Host)
		})
	}
}

func TestLoadRejectsNonLoopbackHostFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BRIDGE_SERVER_HOST", "0.0.0.0")

	_, err := Load(viper.New(), "")
	require.ErrorIs(t, err, ErrInvalidSettings)
}
