package cmd

import (
	"fmt"

	tomlconfig "github.com/bnema/orderlink/internal/adapters/config/toml"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the peripheral profile",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigShowCmd(app))
	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.cfg.GetString(configKey)
			if path == "" {
				defaultPath, err := tomlconfig.DefaultPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}

			if err := tomlconfig.Write(path, tomlconfig.Default(), force); err != nil {
				return fmt.Errorf("config init: %w", err)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote default profile to %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := app.loadProfile()
			if err != nil {
				return err
			}

			data, err := tomlconfig.Marshal(profile)
			if err != nil {
				return err
			}

			source := profile.Source
			if source == "" {
				source = "built-in defaults"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", source, data)
			return err
		},
	}
}
