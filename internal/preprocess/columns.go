package preprocess

import (
	"strconv"
	"strings"
)

// ColumnClassification is the outcome of analyzing a table's columns.
type ColumnClassification struct {
	// CategoryCol is the index of the column holding line-item labels, or -1.
	CategoryCol int
	// ValueCol is the index of the column holding monetary amounts, or -1.
	ValueCol int
	// Dropped lists placeholder-named columns excluded from consideration.
	Dropped []int
}

// ClassifyColumns inspects data rows by position and picks the category and
// value columns. A column is a value column when more than half of its
// non-empty cells parse as numbers. Columns with placeholder names are dropped
// only when they are also numerically empty (under 10% numeric cells); a
// placeholder-named column that actually carries numbers stays in play.
// When no column crosses the majority threshold the last surviving column is
// assumed to hold values, matching the dominant layout of exported statements.
func ClassifyColumns(headers []string, rows [][]string) ColumnClassification {
	cols := len(headers)
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	out := ColumnClassification{CategoryCol: -1, ValueCol: -1}
	if cols == 0 {
		return out
	}

	ratios := make([]float64, cols)
	for j := 0; j < cols; j++ {
		numeric, filled := 0, 0
		for _, row := range rows {
			if j >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[j])
			if cell == "" {
				continue
			}
			filled++
			if LooksNumeric(cell) {
				numeric++
			}
		}
		if filled > 0 {
			ratios[j] = float64(numeric) / float64(filled)
		}
	}

	kept := make([]int, 0, cols)
	for j := 0; j < cols; j++ {
		name := ""
		if j < len(headers) {
			name = headers[j]
		}
		if isPlaceholderHeader(name) && ratios[j] < 0.10 {
			out.Dropped = append(out.Dropped, j)
			continue
		}
		kept = append(kept, j)
	}
	if len(kept) == 0 {
		return out
	}

	for _, j := range kept {
		if ratios[j] > 0.5 {
			out.ValueCol = j
			break
		}
	}
	if out.ValueCol == -1 && len(kept) >= 2 {
		out.ValueCol = kept[len(kept)-1]
	}

	for _, j := range kept {
		if j != out.ValueCol && ratios[j] <= 0.5 {
			out.CategoryCol = j
			break
		}
	}
	if out.CategoryCol == -1 {
		for _, j := range kept {
			if j != out.ValueCol {
				out.CategoryCol = j
				break
			}
		}
	}
	return out
}

// isPlaceholderHeader reports whether a header cell is an auto-generated name
// rather than a real label.
func isPlaceholderHeader(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return true
	}
	if strings.HasPrefix(n, "unnamed") {
		return true
	}
	for _, prefix := range []string{"column", "col", "field"} {
		rest, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, " _")
		if rest == "" {
			return true
		}
		if _, err := strconv.Atoi(rest); err == nil {
			return true
		}
	}
	return false
}
