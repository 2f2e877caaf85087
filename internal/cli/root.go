// Package cli wires the tivoli commands onto cobra.
package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/tivoli-tools/internal/config"
	"github.com/example/tivoli-tools/internal/logging"
)

// Version is reported by --version.
var Version = "0.1.0"

// app carries the state shared by every subcommand of one root.
type app struct {
	v          *viper.Viper
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

// NewRootCommand builds the tivoli command tree. Human-readable output goes to
// stdout; structured logs go to stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "tivoli",
		Short: "Tooling for the tivoli image catalog",
		Long: `tivoli generates placeholder galleries with a matching catalog database,
migrates the flat legacy tag table into the normalized catalog, and checks
the result.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf(
		"tivoli %s (%s/%s, %s)\n",
		Version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, toml or json)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")

	root.AddCommand(
		newFixturesCommand(a),
		newMigrateCommand(a),
		newVerifyCommand(a),
		newStatsCommand(a),
	)
	return root
}

// load binds the running command's flags to their keys, reads the config file
// and validates the merged result. A logger built from it is attached to the
// command context.
func (a *app) load(cmd *cobra.Command, bindings map[string]string) (config.Config, error) {
	bindings[config.KeyLogLevel] = "log-level"
	bindings[config.KeyLogFormat] = "log-format"

	for key, name := range bindings {
		if err := bindChanged(a.v, key, cmd.Flags().Lookup(name)); err != nil {
			return config.Config{}, err
		}
	}

	if err := config.ReadFile(a.v, a.configPath); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return config.Config{}, err
	}

	logger, err := logging.New(a.stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, err
	}
	cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logger))
	return cfg, nil
}

// bindChanged binds flag to key only when the user set it, so an unset flag
// never shadows the environment or the config file with its zero value.
func bindChanged(v *viper.Viper, key string, flag *pflag.Flag) error {
	if flag == nil || !flag.Changed {
		return nil
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind flag --%s: %w", flag.Name, err)
	}
	return nil
}
