package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/weiihann/hubbench/container"
	"github.com/weiihann/hubbench/measure"
	"github.com/weiihann/hubbench/scenario"
)

// Execute runs the standard scenario suite for cfg, instantiating the
// element type that matches cfg.ElementSize.
func Execute(ctx context.Context, cfg Config, logger *slog.Logger) (Table, error) {
	if err := cfg.Validate(); err != nil {
		return Table{}, err
	}

	switch cfg.ElementSize {
	case 8:
		return execute[[4]byte](ctx, cfg, logger)
	case 16:
		return execute[[12]byte](ctx, cfg, logger)
	case 32:
		return execute[[28]byte](ctx, cfg, logger)
	case 64:
		return execute[[60]byte](ctx, cfg, logger)
	case 128:
		return execute[[124]byte](ctx, cfg, logger)
	case 256:
		return execute[[252]byte](ctx, cfg, logger)
	default:
		return Table{}, fmt.Errorf("%w: element size %d",
			ErrInvalidConfig, cfg.ElementSize)
	}
}

func execute[P container.Payload](
	ctx context.Context,
	cfg Config,
	logger *slog.Logger,
) (Table, error) {
	a, err := container.NewFactory[P](cfg.CandidateA, cfg.NonTrivial)
	if err != nil {
		return Table{}, fmt.Errorf("candidate A: %w", err)
	}

	b, err := container.NewFactory[P](cfg.CandidateB, cfg.NonTrivial)
	if err != nil {
		return Table{}, fmt.Errorf("candidate B: %w", err)
	}

	timer := measure.New(
		measure.WithTrials(cfg.Trials),
		measure.WithMinTrialTime(cfg.MinTrialTime),
	)

	size := container.SizeOf[P]()

	logger.InfoContext(ctx, "starting benchmark",
		slog.String("candidate_a", cfg.CandidateA),
		slog.String("candidate_b", cfg.CandidateB),
		slog.String("element_size", humanize.IBytes(uint64(size))),
		slog.Bool("nontrivial", cfg.NonTrivial),
		slog.String("size_limit", humanize.IBytes(cfg.SizeLimit)),
		slog.Int("trials", cfg.Trials),
		slog.Duration("min_trial_time", cfg.MinTrialTime),
	)

	runner := NewRunner(cfg, timer, size, logger)

	table, err := runner.RunSuite(ctx, scenario.Suite(a, b, timer))
	if err != nil {
		return table, err
	}

	logger.DebugContext(ctx, "benchmark sink", slog.Uint64("sink", timer.Sink()))

	return table, nil
}
