package harness_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/hubbench/container"
	"github.com/weiihann/hubbench/harness"
	"github.com/weiihann/hubbench/measure"
	"github.com/weiihann/hubbench/report"
	"github.com/weiihann/hubbench/scenario"
)

func singleCellConfig() harness.Config {
	cfg := harness.DefaultConfig()
	cfg.MinSizeExp = 1
	cfg.MaxSizeExp = 2
	cfg.MinErasureRate = 0
	cfg.MaxErasureRate = 0
	cfg.ErasureRateInc = 1

	return cfg
}

func TestIdenticalCandidatesRatio(t *testing.T) {
	if testing.Short() {
		t.Skip("runs real timing trials")
	}

	cfg := singleCellConfig()
	cfg.MinTrialTime = 20 * time.Millisecond

	newC, err := container.NewFactory[[28]byte]("hub", false)
	require.NoError(t, err)

	timer := measure.New(
		measure.WithTrials(cfg.Trials),
		measure.WithMinTrialTime(cfg.MinTrialTime),
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := harness.NewRunner(cfg, timer, container.SizeOf[[28]byte](), logger)

	table, err := runner.RunSuite(context.Background(), []scenario.Pair{{
		Title: scenario.TitleBuild,
		A:     scenario.BuildEraseRebuild(newC, timer),
		B:     scenario.BuildEraseRebuild(newC, timer),
	}})
	require.NoError(t, err)

	require.Len(t, table.Results, 1)
	require.Len(t, table.Results[0].Cells, 1)

	row := table.Results[0].Cells[0]
	require.Len(t, row, 2)

	for _, cell := range row {
		ratio, err := strconv.ParseFloat(cell, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ratio, 0.5)
		assert.LessOrEqual(t, ratio, 2.0)
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteTable(&buf, table))

	var dataRows []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "| 0 ") {
			dataRows = append(dataRows, line)
		}
	}

	require.Len(t, dataRows, 1)
	assert.Contains(t, dataRows[0], row[0]+" "+row[1]+" ")
}

func TestExecuteFullSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("runs real timing trials")
	}

	cfg := singleCellConfig()
	cfg.Trials = 5
	cfg.MinTrialTime = time.Millisecond
	cfg.ElementSize = 64
	cfg.NonTrivial = true
	cfg.CandidateB = "btree"
	// 100 elements of 64 bytes exceed the limit, 10 do not.
	cfg.SizeLimit = 50 * 64

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	table, err := harness.Execute(context.Background(), cfg, logger)
	require.NoError(t, err)

	assert.Equal(t, 64, table.ElementSize)
	require.Len(t, table.Results, 5)

	for _, res := range table.Results {
		require.Len(t, res.Cells, 1, res.Title)
		require.Len(t, res.Cells[0], 2, res.Title)
		assert.NotEqual(t, harness.Placeholder, res.Cells[0][0], res.Title)
		assert.Equal(t, harness.Placeholder, res.Cells[0][1], res.Title)
	}
}

func TestExecuteRejectsBadConfig(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := harness.DefaultConfig()
	cfg.CandidateA = "vector"

	_, err := harness.Execute(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, container.ErrUnknownCandidate)

	cfg = harness.DefaultConfig()
	cfg.ElementSize = 48

	_, err = harness.Execute(context.Background(), cfg, logger)
	assert.ErrorIs(t, err, harness.ErrInvalidConfig)
}
