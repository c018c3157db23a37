// Package harness sweeps the size x erasure-rate grid, times each
// scenario on both candidates and collects the speed ratios.
package harness

// Placeholder marks a grid cell skipped by the memory cutoff.
const Placeholder = "----"

// Result holds one scenario's ratios: Cells[row][col] is indexed by
// erasure rate, then size exponent.
type Result struct {
	Title string
	Cells [][]string
}

// Table is an ordered set of results sharing the same axes.
type Table struct {
	ElementSize  int
	SizeExps     []int
	ErasureRates []float64
	Results      []Result
}
