// Package report renders benchmark results as an aligned text table.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/weiihann/hubbench/harness"
)

const (
	firstColumnWidth = 15
	minCellWidth     = 5 // "1.E7 " and "0.95 "
)

// WriteFile writes the table for t to path, replacing any existing file.
func WriteFile(path string, t harness.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := WriteTable(f, t); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// WriteTable renders t to w: a banner with the element size, one block
// of columns per result and one row per erasure rate.
func WriteTable(w io.Writer, t harness.Table) error {
	if len(t.Results) == 0 {
		return fmt.Errorf("no results to report")
	}

	cw := cellWidth(t)
	dataWidth := dataColumnWidth(t, cw)
	tableWidth := firstColumnWidth + 2 +
		len(t.Results)*(dataWidth+2) + 1

	dataRule := strings.Repeat(" ", firstColumnWidth+2) +
		strings.Repeat("-", tableWidth-firstColumnWidth-2) + "\n"
	tableRule := strings.Repeat("-", tableWidth) + "\n"

	var b strings.Builder

	b.WriteString(dataRule)
	fmt.Fprintf(&b, "  %-*s%-*s|\n",
		firstColumnWidth, "",
		tableWidth-firstColumnWidth-3,
		"| sizeof(element): "+strconv.Itoa(t.ElementSize),
	)

	b.WriteString(dataRule)
	writeBlocks(&b, "  ", "", dataWidth, len(t.Results), func(i int) string {
		return t.Results[i].Title
	})

	b.WriteString(dataRule)
	writeBlocks(&b, "  ", "", dataWidth, len(t.Results), func(int) string {
		return "container size"
	})

	b.WriteString(tableRule)

	var header strings.Builder
	for _, exp := range t.SizeExps {
		fmt.Fprintf(&header, "%-*s", cw, exponentLabel(exp))
	}

	writeBlocks(&b, "| ", "erase rate", dataWidth, len(t.Results), func(int) string {
		return header.String()
	})

	b.WriteString(tableRule)

	for row, rate := range t.ErasureRates {
		writeBlocks(&b, "| ", FormatRate(rate), dataWidth, len(t.Results), func(i int) string {
			cells := t.Results[i].Cells
			if row >= len(cells) {
				return ""
			}

			var line strings.Builder
			for _, cell := range cells[row] {
				fmt.Fprintf(&line, "%-*s", cw, cell)
			}

			return line.String()
		})
	}

	b.WriteString(tableRule)

	_, err := io.WriteString(w, b.String())

	return err
}

func writeBlocks(
	b *strings.Builder,
	lead, label string,
	width, count int,
	block func(int) string,
) {
	fmt.Fprintf(b, "%s%-*s", lead, firstColumnWidth, label)

	for i := range count {
		fmt.Fprintf(b, "| %-*s", width, block(i))
	}

	b.WriteString("|\n")
}

// cellWidth is the width of one size column: the longest header or
// cell text plus a separating space.
func cellWidth(t harness.Table) int {
	width := minCellWidth

	for _, exp := range t.SizeExps {
		width = max(width, len(exponentLabel(exp))+1)
	}

	for _, r := range t.Results {
		for _, row := range r.Cells {
			for _, cell := range row {
				width = max(width, len(cell)+1)
			}
		}
	}

	return width
}

func exponentLabel(exp int) string {
	return "1.E" + strconv.Itoa(exp)
}

// dataColumnWidth sizes each result block for its size columns, widened
// when a title or sub-header would not fit.
func dataColumnWidth(t harness.Table, cw int) int {
	width := max(len(t.SizeExps)*cw, len("container size"))

	for _, r := range t.Results {
		width = max(width, len(r.Title))
	}

	return width
}

// FormatRate renders an erasure rate as a row label.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'g', 6, 64)
}
