package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cfg := viper.New()
	app := newApp(cfg)

	rootCmd := &cobra.Command{
		Use:           "orderlink",
		Short:         "orderlink: order peripheral over a fragmenting write/notify link",
		Long:          "orderlink accepts orders from short-lived peers over a GATT-style characteristic, reassembles the fragments, acknowledges them and streams a response back. It can serve a BLE co-processor on a serial line, replay scripted sessions, and inspect a running peripheral.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default $HOME/.orderlink/config.toml)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (console, json)")
	_ = cfg.BindPFlag(configKey, flags.Lookup("config"))
	_ = cfg.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = cfg.BindPFlag("log.format", flags.Lookup("log-format"))
	cfg.SetEnvPrefix(envPrefix)
	_ = cfg.BindEnv(configKey)

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(app),
		newServeCmd(app),
		newSimulateCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}
