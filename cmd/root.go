package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "addon-bridge",
		Short:         "Hot-reload add-ons into a running host",
		Long:          "addon-bridge embeds a scripting host that listens on a loopback port for reload requests. Editors push a workspace and a file; the bridge retires the previous version of the add-on and imports the new one without restarting the host.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $HOME/.addon-bridge/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	app := newApp(viper.New(), opts)

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newSendCmd(app),
		newWatchCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
