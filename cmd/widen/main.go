// Command widen applies access-widening rules to JVM class files and JARs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	logger     *zap.Logger
	cfg        *Config
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop(), cfg: &Config{}}

	root := &cobra.Command{
		Use:   "widen",
		Short: "Widen access flags in JVM class files",
		Long: `widen rewrites the access flags of classes, fields and methods named by
access widener rule files. Only flag bits change: code, constant pools and
attributes are written back byte for byte.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (console or json; default depends on terminal)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")

	root.AddCommand(a.transformCmd())
	root.AddCommand(a.inspectCmd())
	root.AddCommand(a.rulesCmd())
	return root
}

// setup loads the config file, if any, and installs the logger. Flags take
// precedence over config values.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.configPath != "" {
		cfg, err := LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}

	level, format := a.cfg.LogLevel, a.cfg.LogFormat
	if cmd.Flags().Changed("log-level") {
		level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		format = a.logFormat
	}

	logger, err := newLogger(level, format)
	if err != nil {
		return err
	}
	a.logger = logger
	installLogger(logger)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
