package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bnema/addon-bridge/internal/adapters/config"
	luahost "github.com/bnema/addon-bridge/internal/adapters/host/lua"
	"github.com/bnema/addon-bridge/internal/adapters/render/console"
	"github.com/bnema/addon-bridge/internal/adapters/transport/tcp"
	"github.com/bnema/addon-bridge/internal/application"
	"github.com/bnema/addon-bridge/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

type app struct {
	cfg  *viper.Viper
	opts *rootOptions
}

func newApp(cfg *viper.Viper, opts *rootOptions) *app {
	return &app{cfg: cfg, opts: opts}
}

// bindFlags maps command flags onto config keys. Binding happens when the
// command runs so commands sharing a key do not steal each other's flags.
func (a *app) bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := a.cfg.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}
	return nil
}

func (a *app) settings() (config.Settings, error) {
	settings, err := config.Load(a.cfg, a.opts.configPath)
	if err != nil {
		return config.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return settings, nil
}

func (a *app) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if a.opts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// bridge is the running side: the embedded host, the reload listener and the
// watchdog sharing the host handle.
type bridge struct {
	host     *luahost.Host
	service  *application.ReloadService
	server   *tcp.Server
	watchdog *application.Watchdog
}

func wireBridge(ctx context.Context, settings config.Settings, logger *slog.Logger, out io.Writer) (*bridge, error) {
	host := luahost.New(logger.With("component", "host"))
	if settings.Reload.Startup != "" {
		if err := host.RunFile(ctx, settings.Reload.Startup); err != nil {
			_ = host.Close()
			return nil, fmt.Errorf("run startup script: %w", err)
		}
	}

	service := application.NewReloadService(host, console.NewReporter(out), logger.With("component", "dispatcher"),
		application.WithLayout(settings.Reload.Layout),
		application.WithMatchMode(settings.Reload.Match),
	)

	handler := func(ctx context.Context, requestID, payload string) {
		service.Dispatch(ctx, requestID, payload)
	}

	return &bridge{
		host:    host,
		service: service,
		server: tcp.NewServer(settings.Server.Addr(), handler,
			tcp.WithLogger(logger.With("component", "listener")),
			tcp.WithReadTimeout(settings.Server.ReadTimeout),
		),
		watchdog: application.NewWatchdog(host, settings.Watchdog.Interval, ports.SystemClock{}, logger.With("component", "watchdog")),
	}, nil
}

// Run binds the listener, then serves until ctx is cancelled or the watchdog
// gives up on the host.
func (b *bridge) Run(ctx context.Context) error {
	if err := b.server.Listen(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.server.Serve(gctx)
	})
	g.Go(func() error {
		return b.watchdog.Run(gctx)
	})

	return g.Wait()
}

func (b *bridge) Close() error {
	return b.host.Close()
}
