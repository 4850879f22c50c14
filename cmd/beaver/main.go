// Package main implements the beaver CLI: it bootstraps configuration and
// logging for a process and inspects or validates configuration.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/beaver/internal/bootstrap"
	"github.com/fyrsmithlabs/beaver/internal/config"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootFlags are shared by every subcommand.
type rootFlags struct {
	configDir    string
	envPrefix    string
	envSeparator string
}

func (f *rootFlags) configOptions() config.Options {
	return config.Options{
		Dir:          f.configDir,
		EnvPrefix:    f.envPrefix,
		EnvSeparator: f.envSeparator,
	}
}

func (f *rootFlags) bootstrapOptions() []bootstrap.Option {
	return []bootstrap.Option{
		bootstrap.WithConfigDir(f.configDir),
		bootstrap.WithEnvPrefix(f.envPrefix),
		bootstrap.WithEnvSeparator(f.envSeparator),
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:   "beaver",
		Short: "Bootstrap configuration and multi-appender logging",
		Long: `beaver loads layered configuration (config.yaml or config.toml plus
environment overrides) and installs a routing logger that fans events out
to rotating files and the console.

The configuration directory defaults to $BEAVER_CONFIG, then to the etc
directory next to the executable. Environment overrides look like
BEAVER__LOGGING__FORMAT=console.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "directory holding config.yaml or config.toml")
	cmd.PersistentFlags().StringVar(&flags.envPrefix, "env-prefix", config.DefaultEnvPrefix, "prefix of environment overrides")
	cmd.PersistentFlags().StringVar(&flags.envSeparator, "env-separator", config.DefaultEnvSeparator, "separator of environment overrides")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "beaver by Fyrsmith Labs\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}
