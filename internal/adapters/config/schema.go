package config

import (
	"fmt"
	"time"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int            `toml:"version"`
	Server   serverSchema   `toml:"server"`
	Watchdog watchdogSchema `toml:"watchdog"`
	Reload   reloadSchema   `toml:"reload"`
	Watch    watchSchema    `toml:"watch"`
}

type serverSchema struct {
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	ReadTimeout string `toml:"read_timeout"`
}

type watchdogSchema struct {
	Interval string `toml:"interval"`
}

type reloadSchema struct {
	Match   string `toml:"match"`
	Layout  string `toml:"layout"`
	Startup string `toml:"startup,omitempty"`
}

type watchSchema struct {
	Debounce string `toml:"debounce"`
	Package  bool   `toml:"package"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func validateVersion(version int) error {
	if version > currentSchemaVersion {
		return fmt.Errorf("unsupported config schema version %d (current %d)", version, currentSchemaVersion)
	}

	return nil
}

func toSchema(settings Settings) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		Server: serverSchema{
			Host:        settings.Server.Host,
			Port:        settings.Server.Port,
			ReadTimeout: formatDuration(settings.Server.ReadTimeout),
		},
		Watchdog: watchdogSchema{Interval: formatDuration(settings.Watchdog.Interval)},
		Reload: reloadSchema{
			Match:   string(settings.Reload.Match),
			Layout:  settings.Reload.Layout.Name,
			Startup: settings.Reload.Startup,
		},
		Watch: watchSchema{
			Debounce: formatDuration(settings.Watch.Debounce),
			Package:  settings.Watch.Package,
		},
	}
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}
