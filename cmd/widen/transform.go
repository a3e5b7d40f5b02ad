package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/class-widener/archive"
	"github.com/wippyai/class-widener/async"
	"github.com/wippyai/class-widener/errors"
	"github.com/wippyai/class-widener/widener"
)

type transformFlags struct {
	in          string
	out         string
	rules       []string
	parallelism int
	interactive bool
}

func (a *app) transformCmd() *cobra.Command {
	var f transformFlags
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Widen access in every class of a JAR",
		Example: `  widen transform --rules mod.accesswidener --in game.jar --out game-widened.jar
  widen transform --config widen.yaml --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTransform(cmd, f)
		},
	}
	cmd.Flags().StringArrayVar(&f.rules, "rules", nil, "Rules file (repeatable)")
	cmd.Flags().StringVar(&f.in, "in", "", "Input JAR")
	cmd.Flags().StringVar(&f.out, "out", "", "Output JAR")
	cmd.Flags().IntVar(&f.parallelism, "parallel", 0, "Classes transformed at once (default GOMAXPROCS)")
	cmd.Flags().BoolVar(&f.interactive, "interactive", false, "Show a progress bar")
	return cmd
}

// merge overlays the flags that were set explicitly onto the loaded config.
func (f transformFlags) merge(cmd *cobra.Command, cfg Config) Config {
	flags := cmd.Flags()
	if flags.Changed("rules") {
		cfg.Rules = f.rules
	}
	if flags.Changed("in") {
		cfg.Input = f.in
	}
	if flags.Changed("out") {
		cfg.Output = f.out
	}
	if flags.Changed("parallel") {
		cfg.Parallelism = f.parallelism
	}
	if flags.Changed("interactive") {
		cfg.Interactive = f.interactive
	}
	return cfg
}

func (a *app) runTransform(cmd *cobra.Command, f transformFlags) error {
	cfg := f.merge(cmd, *a.cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Interactive && !stdoutIsTerminal() {
		return errors.InvalidInput(errors.PhaseConfig, "--interactive requires a terminal")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rules := async.Run(async.GoExecutor{}, func() (*widener.Ruleset, error) {
		return widener.LoadRules(cfg.Rules...)
	})
	transformer, err := async.Then(rules, func(rs *widener.Ruleset) (*widener.Transformer, error) {
		a.logger.Info("rules loaded",
			zap.Int("rules", rs.Len()),
			zap.String("namespace", rs.Namespace()))
		return widener.NewTransformer(rs), nil
	}).Await(ctx)
	if err != nil {
		return err
	}

	pool := async.NewPool(1, 1)
	defer pool.Close()

	passCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := time.Now()
	start := func(onProgress func(done, total int)) *async.Result[archive.Report] {
		opts := []archive.Option{archive.WithParallelism(cfg.Parallelism)}
		if onProgress != nil {
			opts = append(opts, archive.WithProgress(onProgress))
		}
		return async.Run(pool, func() (archive.Report, error) {
			return archive.TransformJar(passCtx, cfg.Input, cfg.Output, transformer, opts...)
		})
	}

	var report archive.Report
	if cfg.Interactive {
		report, err = runInteractive(cfg.Input, cfg.Output, cancel, start)
	} else {
		report, err = start(nil).Await(ctx)
	}
	if err != nil {
		return err
	}

	if !cfg.Interactive {
		fmt.Fprintln(cmd.OutOrStdout(), summary(report, time.Since(started)))
	}
	return nil
}
