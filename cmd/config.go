package cmd

import (
	"fmt"

	"github.com/bnema/addon-bridge/internal/adapters/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the bridge configuration",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.opts.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}

			if err := config.Write(path, config.Defaults(), force); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.settings()
			if err != nil {
				return err
			}

			data, err := config.Encode(settings)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
