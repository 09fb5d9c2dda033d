package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bnema/addon-bridge/internal/adapters/config"
	"github.com/bnema/addon-bridge/internal/adapters/render/status"
	"github.com/bnema/addon-bridge/internal/adapters/transport/tcp"
	"github.com/bnema/addon-bridge/internal/adapters/watch"
	"github.com/bnema/addon-bridge/internal/adapters/workspace"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd(app *app) *cobra.Command {
	var plain bool

	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Send a reload request whenever a source file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bindFlags(cmd, map[string]string{
				"host":     config.KeyServerHost,
				"port":     config.KeyServerPort,
				"layout":   config.KeyReloadLayout,
				"debounce": config.KeyWatchDebounce,
				"package":  config.KeyWatchPackage,
			}); err != nil {
				return err
			}

			settings, err := app.settings()
			if err != nil {
				return err
			}

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if dir, err = filepath.Abs(dir); err != nil {
				return fmt.Errorf("resolve watch directory: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := tcp.Client{Addr: settings.Server.Addr()}
			resolver := workspace.NewResolver(afero.NewOsFs(), settings.Reload.Layout)
			opts := []watch.Option{
				watch.WithDebounce(settings.Watch.Debounce),
				watch.WithPackageMode(settings.Watch.Package),
			}

			if plain {
				watcher := watch.New(dir, resolver, append(opts, watch.WithLogger(app.logger(cmd.ErrOrStderr())))...)
				return watcher.Run(ctx, client.Send)
			}

			return runWatchView(ctx, cmd, dir, resolver, client, opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&plain, "plain", false, "log sends instead of showing the live view")
	flags.Bool("package", defaults.Watch.Package, "send the package entry point instead of the changed file")
	flags.Duration("debounce", defaults.Watch.Debounce, "quiet period before a change is sent")
	flags.String("host", defaults.Server.Host, "bridge address")
	flags.Int("port", defaults.Server.Port, "bridge port")
	flags.String("layout", defaults.Reload.Layout.Name, "add-on layout: lua or python")

	return cmd
}

func runWatchView(ctx context.Context, cmd *cobra.Command, dir string, resolver workspace.Resolver, client tcp.Client, opts []watch.Option) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	program := status.NewProgram(gctx, status.NewModel("Watching "+dir, 0), cmd.InOrStdin(), cmd.OutOrStdout())
	watcher := watch.New(dir, resolver, append(opts,
		watch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		watch.WithObserver(func(d watch.Delivery) {
			program.Record(status.Entry{Workspace: d.Workspace, File: d.File, At: d.At, Err: d.Err})
		}),
	)...)

	g.Go(func() error {
		defer program.Quit()
		return watcher.Run(gctx, client.Send)
	})
	g.Go(func() error {
		defer cancel()
		err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
