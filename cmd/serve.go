package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/addon-bridge/internal/adapters/config"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the embedded host and listen for reload requests",
		Long:  "serve starts the embedded Lua host, optionally runs a startup script, and accepts one reload request at a time on the loopback port. It stops when interrupted or when the host has no scene left.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.bindFlags(cmd, map[string]string{
				"host":              config.KeyServerHost,
				"port":              config.KeyServerPort,
				"read-timeout":      config.KeyServerReadTimeout,
				"watchdog-interval": config.KeyWatchdogInterval,
				"match":             config.KeyReloadMatch,
				"layout":            config.KeyReloadLayout,
				"startup":           config.KeyReloadStartup,
			}); err != nil {
				return err
			}

			settings, err := app.settings()
			if err != nil {
				return err
			}
			logger := app.logger(cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bridge, err := wireBridge(ctx, settings, logger, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				_ = bridge.Close()
			}()

			return bridge.Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.String("host", defaults.Server.Host, "loopback address to listen on")
	flags.Int("port", defaults.Server.Port, "port to listen on (0 picks a free port)")
	flags.Duration("read-timeout", defaults.Server.ReadTimeout, "drop clients that do not finish a request in time (0 waits forever)")
	flags.Duration("watchdog-interval", defaults.Watchdog.Interval, "host liveness poll interval")
	flags.String("match", string(defaults.Reload.Match), "module match mode: boundary or prefix")
	flags.String("layout", defaults.Reload.Layout.Name, "add-on layout: lua or python")
	flags.String("startup", "", "Lua script to run before listening")

	return cmd
}
