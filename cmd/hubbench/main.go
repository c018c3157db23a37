// Package main provides the CLI entry point for hubbench, which compares
// two interchangeable container implementations under identical
// synthetic workloads.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiihann/hubbench/container"
	"github.com/weiihann/hubbench/harness"
	"github.com/weiihann/hubbench/report"
)

var errMissingOutput = errors.New("missing output file name")

func main() {
	var level slog.LevelVar

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: &level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	root := newRootCmd(logger, &level)
	err := root.ExecuteContext(ctx)

	stop()

	if err != nil {
		logger.Error("hubbench failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "hubbench",
		Short: "Relative-speed benchmark of two container implementations",
		Long: `Hubbench builds, traverses and sorts two candidate containers with the
same deterministic insert/shuffle/erase workloads over a grid of sizes and
erasure rates, and writes the time ratios as a text table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log every completed table row")

	root.AddCommand(newRunCmd(logger), newCandidatesCmd())

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		fv         = harness.DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "run <output-file>",
		Short: "Run the benchmark grid and write the comparison table",
		Long: `Run the five standard scenarios (insert/erase/insert, the same with
destruction, for_each, visit_all and sort) on both candidates and write the
ratio time(A)/time(B) per grid cell to the output file. Ratios below 1.00
mean candidate A is faster.`,
		Args: func(_ *cobra.Command, args []string) error {
			switch {
			case len(args) == 0:
				return errMissingOutput
			case len(args) > 1:
				return fmt.Errorf("expected one output file, got %d arguments", len(args))
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := harness.DefaultConfig()

			if configPath != "" {
				var err error

				cfg, err = harness.LoadConfig(configPath, cfg)
				if err != nil {
					return err
				}
			}

			applyFlags(cmd, &cfg, fv)

			return runBenchmark(cmd.Context(), logger, cfg, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"YAML file with benchmark options (flags override it)")
	flags.IntVar(&fv.ElementSize, "element-size", fv.ElementSize,
		fmt.Sprintf("Total element size in bytes, one of %v", container.SupportedSizes))
	flags.BoolVar(&fv.NonTrivial, "nontrivial", fv.NonTrivial,
		"Zero element payloads on erase, move and destroy")
	flags.IntVar(&fv.MinSizeExp, "min-size-exp", fv.MinSizeExp,
		"Smallest container size as a power of ten")
	flags.IntVar(&fv.MaxSizeExp, "max-size-exp", fv.MaxSizeExp,
		"Largest container size as a power of ten")
	flags.Float64Var(&fv.MinErasureRate, "min-erasure-rate", fv.MinErasureRate,
		"First erasure rate row")
	flags.Float64Var(&fv.MaxErasureRate, "max-erasure-rate", fv.MaxErasureRate,
		"Last erasure rate row")
	flags.Float64Var(&fv.ErasureRateInc, "erasure-rate-inc", fv.ErasureRateInc,
		"Step between erasure rate rows")
	flags.IntVar(&fv.Trials, "trials", fv.Trials,
		"Timing trials per measurement (at least 5)")
	flags.DurationVar(&fv.MinTrialTime, "min-trial-time", fv.MinTrialTime,
		"Minimum time spent in each trial")
	flags.Uint64Var(&fv.SizeLimit, "size-limit", fv.SizeLimit,
		"Skip cells whose elements would exceed this many bytes")
	flags.StringVar(&fv.CandidateA, "candidate-a", fv.CandidateA,
		"Candidate A (numerator of the ratio)")
	flags.StringVar(&fv.CandidateB, "candidate-b", fv.CandidateB,
		"Candidate B (denominator of the ratio)")

	return cmd
}

// applyFlags copies explicitly set flags from fv onto cfg.
func applyFlags(cmd *cobra.Command, cfg *harness.Config, fv harness.Config) {
	overrides := map[string]func(){
		"element-size":     func() { cfg.ElementSize = fv.ElementSize },
		"nontrivial":       func() { cfg.NonTrivial = fv.NonTrivial },
		"min-size-exp":     func() { cfg.MinSizeExp = fv.MinSizeExp },
		"max-size-exp":     func() { cfg.MaxSizeExp = fv.MaxSizeExp },
		"min-erasure-rate": func() { cfg.MinErasureRate = fv.MinErasureRate },
		"max-erasure-rate": func() { cfg.MaxErasureRate = fv.MaxErasureRate },
		"erasure-rate-inc": func() { cfg.ErasureRateInc = fv.ErasureRateInc },
		"trials":           func() { cfg.Trials = fv.Trials },
		"min-trial-time":   func() { cfg.MinTrialTime = fv.MinTrialTime },
		"size-limit":       func() { cfg.SizeLimit = fv.SizeLimit },
		"candidate-a":      func() { cfg.CandidateA = fv.CandidateA },
		"candidate-b":      func() { cfg.CandidateB = fv.CandidateB },
	}

	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func newCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates",
		Short: "List the available candidate containers and their capabilities",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			for _, name := range container.Names() {
				newC, err := container.NewFactory[[28]byte](name, false)
				if err != nil {
					fmt.Fprintf(out, "%-6s  %v\n", name, err)
					continue
				}

				caps := container.Describe(newC())
				fmt.Fprintf(out, "%-6s  handle-erase=%t void-erase=%t visit-all=%t\n",
					name, caps.HandleErase, caps.VoidErase, caps.VisitAll)
			}
		},
	}
}

// runBenchmark runs the suite and writes the table. A panic raised by a
// candidate aborts the run and is reported as an error; no table is
// written in that case.
func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	cfg harness.Config,
	outPath string,
) (err error) {
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("benchmark aborted: %v", r)
		}
	}()

	table, err := harness.Execute(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("benchmark: %w", err)
	}

	if err := report.WriteFile(outPath, table); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	logger.InfoContext(ctx, "benchmark complete",
		slog.String("output", outPath),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}
