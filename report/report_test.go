package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiihann/hubbench/harness"
)

func sampleTable() harness.Table {
	return harness.Table{
		ElementSize:  32,
		SizeExps:     []int{3, 4, 5, 6, 7},
		ErasureRates: []float64{0, 0.1, 0.30000000000000004},
		Results: []harness.Result{
			{
				Title: "insert, erase, insert",
				Cells: [][]string{
					{"0.91", "0.95", "1.02", "1.10", "1.20"},
					{"0.92", "0.96", "1.03", "1.11", "1.21"},
					{"0.93", "0.97", "1.04", "1.12", "----"},
				},
			},
			{
				Title: "sort",
				Cells: [][]string{
					{"0.50", "0.51", "0.52", "0.53", "0.54"},
					{"0.55", "0.56", "0.57", "0.58", "0.59"},
					{"0.60", "0.61", "0.62", "0.63", "----"},
				},
			},
		},
	}
}

func render(t *testing.T, table harness.Table) []string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))

	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestWriteTableLayout(t *testing.T) {
	lines := render(t, sampleTable())

	// 15 + 2 + 2 blocks of (25 + 2) + 1.
	const width = 72

	// Three banner rules, two full rules, header, rows, closing rule.
	require.Len(t, lines, 13)

	for i, line := range lines {
		assert.Len(t, line, width, "line %d: %q", i, line)
	}

	dataRule := strings.Repeat(" ", 17) + strings.Repeat("-", width-17)
	tableRule := strings.Repeat("-", width)

	assert.Equal(t, dataRule, lines[0])
	assert.Contains(t, lines[1], "| sizeof(element): 32")
	assert.Equal(t, dataRule, lines[2])
	assert.Contains(t, lines[3], "| insert, erase, insert    | sort")
	assert.Equal(t, dataRule, lines[4])
	assert.Equal(t, 2, strings.Count(lines[5], "container size"))
	assert.Equal(t, tableRule, lines[6])
	assert.Equal(t,
		"| erase rate     | 1.E3 1.E4 1.E5 1.E6 1.E7 | 1.E3 1.E4 1.E5 1.E6 1.E7 |",
		lines[7])
	assert.Equal(t, tableRule, lines[8])
	assert.Equal(t,
		"| 0              | 0.91 0.95 1.02 1.10 1.20 | 0.50 0.51 0.52 0.53 0.54 |",
		lines[9])
	assert.True(t, strings.HasPrefix(lines[10], "| 0.1 "))
	assert.Equal(t,
		"| 0.3            | 0.93 0.97 1.04 1.12 ---- | 0.60 0.61 0.62 0.63 ---- |",
		lines[11])
	assert.Equal(t, tableRule, lines[12])
}

func TestWriteTableWideTitle(t *testing.T) {
	table := harness.Table{
		ElementSize:  16,
		SizeExps:     []int{1, 2},
		ErasureRates: []float64{0},
		Results: []harness.Result{
			{Title: "ins, erase, ins, destroy", Cells: [][]string{{"1.00", "0.99"}}},
			{Title: "for_each", Cells: [][]string{{"1.01", "1.02"}}},
		},
	}

	lines := render(t, table)

	for i := 1; i < len(lines); i++ {
		assert.Len(t, lines[i], len(lines[0]), "line %d", i)
	}

	assert.Equal(t,
		"| 0              | 1.00 0.99               | 1.01 1.02               |",
		lines[9])
}

func TestWriteTableTwoDigitExponents(t *testing.T) {
	table := harness.Table{
		ElementSize:  8,
		SizeExps:     []int{9, 10, 11},
		ErasureRates: []float64{0},
		Results: []harness.Result{
			{Title: "sort", Cells: [][]string{{"0.50", "0.51", "0.52"}}},
		},
	}

	lines := render(t, table)

	for i := 1; i < len(lines); i++ {
		assert.Len(t, lines[i], len(lines[0]), "line %d", i)
	}

	assert.Equal(t, "| erase rate     | 1.E9  1.E10 1.E11 |", lines[7])
	assert.Equal(t, "| 0              | 0.50  0.51  0.52  |", lines[9])
}

func TestWriteTableLargeRatios(t *testing.T) {
	table := harness.Table{
		ElementSize:  256,
		SizeExps:     []int{3, 4, 5, 6, 7},
		ErasureRates: []float64{0.5},
		Results: []harness.Result{
			{
				Title: "visit_all",
				Cells: [][]string{{"12.34", "45.10", "88.02", "120.55", "310.90"}},
			},
		},
	}

	lines := render(t, table)

	for i := 1; i < len(lines); i++ {
		assert.Len(t, lines[i], len(lines[0]), "line %d", i)
	}

	assert.Equal(t,
		"| erase rate     | 1.E3   1.E4   1.E5   1.E6   1.E7   |",
		lines[7])
	assert.Equal(t,
		"| 0.5            | 12.34  45.10  88.02  120.55 310.90 |",
		lines[9])
}

func TestWriteTablePartialResult(t *testing.T) {
	table := sampleTable()
	table.Results[1].Cells = table.Results[1].Cells[:1]

	lines := render(t, table)
	assert.True(t, strings.HasSuffix(lines[11], "| "+strings.Repeat(" ", 25)+"|"))
	assert.Len(t, lines[11], len(lines[0]))
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteTable(&buf, harness.Table{}))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, WriteFile(path, sampleTable()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sizeof(element): 32")

	err = WriteFile(filepath.Join(t.TempDir(), "missing", "out.txt"), sampleTable())
	assert.Error(t, err)
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0"},
		{0.1, "0.1"},
		{0.1 + 0.2, "0.3"},
		{0.7999999999999999, "0.8"},
		{1, "1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRate(tt.input))
	}
}
