package harness

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/weiihann/hubbench/scenario"
)

// Measurer times a single operation, returning seconds per call.
type Measurer interface {
	Measure(op func() uint32) (float64, error)
}

// Runner executes scenario pairs over the configured grid.
type Runner struct {
	cfg         Config
	timer       Measurer
	elementSize uint64
	logger      *slog.Logger
}

// NewRunner creates a Runner. elementSize is the in-memory size of one
// element and drives the memory cutoff.
func NewRunner(
	cfg Config,
	timer Measurer,
	elementSize uintptr,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		cfg:         cfg,
		timer:       timer,
		elementSize: max(uint64(elementSize), 1),
		logger:      logger,
	}
}

// RunSuite runs every pair in order and assembles the table. Each pair's
// Release hook runs as soon as the pair is done, so only one pair's
// containers are alive at a time.
func (r *Runner) RunSuite(ctx context.Context, pairs []scenario.Pair) (Table, error) {
	t := Table{
		ElementSize:  int(r.elementSize),
		SizeExps:     r.cfg.SizeExps(),
		ErasureRates: r.cfg.ErasureRates(),
		Results:      make([]Result, 0, len(pairs)),
	}

	for _, p := range pairs {
		res, err := r.Run(ctx, p.Title, p.A, p.B)
		if p.Release != nil {
			p.Release()
		}

		if err != nil {
			return t, err
		}

		t.Results = append(t.Results, res)
	}

	return t, nil
}

// Run measures a against b on every grid cell. Each cell holds
// time(a)/time(b) with two decimals, so values below 1 favour a.
func (r *Runner) Run(
	ctx context.Context,
	title string,
	a, b scenario.Func,
) (Result, error) {
	res := Result{Title: title}
	exps := r.cfg.SizeExps()
	start := time.Now()

	r.logger.InfoContext(ctx, "running scenario", slog.String("title", title))

	for _, rate := range r.cfg.ErasureRates() {
		row := make([]string, 0, len(exps))

		for _, exp := range exps {
			if err := ctx.Err(); err != nil {
				return res, fmt.Errorf("run %q: %w", title, err)
			}

			cell, err := r.cell(a, b, pow10(exp), rate)
			if err != nil {
				return res, fmt.Errorf(
					"run %q at 1.E%d, erase rate %g: %w", title, exp, rate, err,
				)
			}

			row = append(row, cell)
		}

		res.Cells = append(res.Cells, row)

		r.logger.DebugContext(ctx, "row complete",
			slog.String("title", title),
			slog.Float64("erasure_rate", rate),
			slog.String("ratios", strings.Join(row, " ")),
		)
	}

	r.logger.InfoContext(ctx, "scenario finished",
		slog.String("title", title),
		slog.Duration("elapsed", time.Since(start)),
	)

	return res, nil
}

func (r *Runner) cell(a, b scenario.Func, n int, rate float64) (string, error) {
	// Equivalent to n*elementSize > SizeLimit without overflowing.
	if uint64(n) > r.cfg.SizeLimit/r.elementSize {
		return Placeholder, nil
	}

	ta, err := r.timer.Measure(func() uint32 { return a(n, rate) })
	if err != nil {
		return "", fmt.Errorf("candidate A: %w", err)
	}

	tb, err := r.timer.Measure(func() uint32 { return b(n, rate) })
	if err != nil {
		return "", fmt.Errorf("candidate B: %w", err)
	}

	return strconv.FormatFloat(ta/tb, 'f', 2, 64), nil
}

func pow10(exp int) int {
	n := 1
	for range exp {
		n *= 10
	}

	return n
}
