package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/beaver/internal/config"
	"github.com/fyrsmithlabs/beaver/internal/logging"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration",
	}
	cmd.AddCommand(newConfigPrintCmd(flags))
	cmd.AddCommand(newConfigValidateCmd(flags))
	return cmd
}

func newConfigPrintCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the merged configuration as key = value lines",
		Long: `Print the configuration after environment overrides, one sorted
"key = value" line per leaf. Array elements are shown as key[i].`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			for _, line := range cfg.Properties() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newConfigValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the logging section and show the compiled routes",
		Long: `Validate the logging section the way startup does and print the route
of every enabled appender. No sink is opened, but missing log directories
are created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			logCfg, err := logging.Load(cfg)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			routes, err := logCfg.Routes()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, r := range routes {
				fmt.Fprintln(out, r)
			}
			fmt.Fprintf(out, "configuration is valid: %d loggers, %d enabled appenders\n",
				len(logCfg.AllLogger.Descriptors()), len(routes))
			return nil
		},
	}
}

func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, error) {
	opts := flags.configOptions()
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	if cfg.File() == "" {
		dir := opts.Dir
		if dir == "" {
			dir = config.DefaultDir()
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: no configuration file found in %s\n", dir)
	}
	return cfg, nil
}
