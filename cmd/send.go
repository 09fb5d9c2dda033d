package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bnema/addon-bridge/internal/adapters/config"
	"github.com/bnema/addon-bridge/internal/adapters/transport/tcp"
	"github.com/bnema/addon-bridge/internal/adapters/workspace"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newSendCmd(app *app) *cobra.Command {
	var (
		workspacePath string
		sendPackage   bool
		timeout       time.Duration
	)

	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "send <file>",
		Short: "Push one file to a running bridge for reload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bindFlags(cmd, map[string]string{
				"host":   config.KeyServerHost,
				"port":   config.KeyServerPort,
				"layout": config.KeyReloadLayout,
			}); err != nil {
				return err
			}

			settings, err := app.settings()
			if err != nil {
				return err
			}

			file, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}

			resolver := workspace.NewResolver(afero.NewOsFs(), settings.Reload.Layout)
			root := workspacePath
			if root == "" {
				if root, err = resolver.Root(file); err != nil {
					return err
				}
			} else if root, err = filepath.Abs(root); err != nil {
				return fmt.Errorf("resolve workspace: %w", err)
			}

			if sendPackage {
				if file, err = resolver.EntryPoint(root); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client := tcp.Client{Addr: settings.Server.Addr()}
			if err := client.Send(ctx, root, file); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %s (workspace %s) to %s\n", file, root, client.Addr)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&workspacePath, "workspace", "w", "", "workspace directory (default: nearest add-on root)")
	flags.BoolVarP(&sendPackage, "package", "p", false, "send the package entry point instead of the file")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the bridge to handle the request")
	flags.String("host", defaults.Server.Host, "bridge address")
	flags.Int("port", defaults.Server.Port, "bridge port")
	flags.String("layout", defaults.Reload.Layout.Name, "add-on layout: lua or python")

	return cmd
}
