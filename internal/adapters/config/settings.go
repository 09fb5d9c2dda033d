package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".addon-bridge"
	envPrefix  = "BRIDGE"

	KeyVersion           = "version"
	KeyServerHost        = "server.host"
	KeyServerPort        = "server.port"
	KeyServerReadTimeout = "server.read_timeout"
	KeyWatchdogInterval  = "watchdog.interval"
	KeyReloadMatch       = "reload.match"
	KeyReloadLayout      = "reload.layout"
	KeyReloadStartup     = "reload.startup"
	KeyWatchDebounce     = "watch.debounce"
	KeyWatchPackage      = "watch.package"
)

var ErrInvalidSettings = errors.New("invalid settings")

type Settings struct {
	Server   ServerSettings
	Watchdog WatchdogSettings
	Reload   ReloadSettings
	Watch    WatchSettings
}

type ServerSettings struct {
	Host        string
	Port        int
	ReadTimeout time.Duration
}

type WatchdogSettings struct {
	Interval time.Duration
}

type ReloadSettings struct {
	Match   domain.MatchMode
	Layout  domain.Layout
	Startup string
}

type WatchSettings struct {
	Debounce time.Duration
	Package  bool
}

// Addr joins host and port. Port 0 binds an ephemeral port.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

func Defaults() Settings {
	return Settings{
		Server: ServerSettings{
			Host: "127.0.0.1",
			Port: 3264,
		},
		Watchdog: WatchdogSettings{Interval: 8 * time.Second},
		Reload: ReloadSettings{
			Match:  domain.MatchBoundary,
			Layout: domain.LuaLayout,
		},
		Watch: WatchSettings{Debounce: 300 * time.Millisecond},
	}
}

// DefaultPath is $HOME/.addon-bridge/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, configDir, configName+"."+configType), nil
}

// Load resolves settings from defaults, the config file, BRIDGE_* environment
// variables and any flags already bound on cfg, in increasing precedence. An
// explicit path must exist; the default file is optional.
func Load(cfg *viper.Viper, path string) (Settings, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	setDefaults(cfg)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		if homeDir, err := os.UserHomeDir(); err == nil {
			cfg.AddConfigPath(filepath.Join(homeDir, configDir))
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configNotFound) {
			return Settings{}, fmt.Errorf("read config file: %w", err)
		}
	}

	if err := validateVersion(cfg.GetInt(KeyVersion)); err != nil {
		return Settings{}, err
	}

	return decode(cfg)
}

func setDefaults(cfg *viper.Viper) {
	defaults := toSchema(Defaults())

	cfg.SetDefault(KeyServerHost, defaults.Server.Host)
	cfg.SetDefault(KeyServerPort, defaults.Server.Port)
	cfg.SetDefault(KeyServerReadTimeout, defaults.Server.ReadTimeout)
	cfg.SetDefault(KeyWatchdogInterval, defaults.Watchdog.Interval)
	cfg.SetDefault(KeyReloadMatch, defaults.Reload.Match)
	cfg.SetDefault(KeyReloadLayout, defaults.Reload.Layout)
	cfg.SetDefault(KeyReloadStartup, "")
	cfg.SetDefault(KeyWatchDebounce, defaults.Watch.Debounce)
	cfg.SetDefault(KeyWatchPackage, defaults.Watch.Package)
}

func decode(cfg *viper.Viper) (Settings, error) {
	var errs []error

	settings := Settings{
		Server: ServerSettings{
			Host: cfg.GetString(KeyServerHost),
			Port: cfg.GetInt(KeyServerPort),
		},
		Reload: ReloadSettings{Startup: cfg.GetString(KeyReloadStartup)},
		Watch:  WatchSettings{Package: cfg.GetBool(KeyWatchPackage)},
	}

	if settings.Server.Host == "" {
		errs = append(errs, fmt.Errorf("%w: %s is empty", ErrInvalidSettings, KeyServerHost))
	} else if !isLoopback(settings.Server.Host) {
		errs = append(errs, fmt.Errorf("%w: %s %q is not a loopback address", ErrInvalidSettings, KeyServerHost, settings.Server.Host))
	}
	if settings.Server.Port < 0 || settings.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: %s %d out of range", ErrInvalidSettings, KeyServerPort, settings.Server.Port))
	}

	var err error
	if settings.Server.ReadTimeout, err = duration(cfg, KeyServerReadTimeout); err != nil {
		errs = append(errs, err)
	}
	if settings.Watchdog.Interval, err = duration(cfg, KeyWatchdogInterval); err != nil {
		errs = append(errs, err)
	} else if settings.Watchdog.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s must be positive", ErrInvalidSettings, KeyWatchdogInterval))
	}
	if settings.Watch.Debounce, err = duration(cfg, KeyWatchDebounce); err != nil {
		errs = append(errs, err)
	}

	if settings.Reload.Match, err = domain.ParseMatchMode(cfg.GetString(KeyReloadMatch)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidSettings, KeyReloadMatch, err))
	}
	if settings.Reload.Layout, err = domain.LayoutByName(cfg.GetString(KeyReloadLayout)); err != nil {
		errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidSettings, KeyReloadLayout, err))
	}

	if len(errs) > 0 {
		return Settings{}, errors.Join(errs...)
	}

	return settings, nil
}

// The listener executes whatever it is sent, so it never leaves the machine.
func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func duration(cfg *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(cfg.GetString(key))
	if raw == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidSettings, key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidSettings, key)
	}

	return d, nil
}
