package preprocess

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"noiflow/internal/domain"
)

// processCSV parses delimiter-separated text. The delimiter is sniffed from
// the first line since exports in the wild use commas, semicolons, and tabs
// interchangeably.
func processCSV(data []byte) (*domain.PreprocessedContent, error) {
	text := string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return &domain.PreprocessedContent{Format: domain.FormatCSV}, nil
	}

	headers, body := splitHeader(rows)
	rendered := renderTable("", headers, body)

	return &domain.PreprocessedContent{
		Text:                 strings.TrimSpace(rendered.Text),
		LineItems:            rendered.Items,
		IsFinancialStatement: rendered.IsStatement,
		Format:               domain.FormatCSV,
	}, nil
}

// sniffDelimiter picks the separator with the highest count on the first
// non-empty line, defaulting to comma.
func sniffDelimiter(text string) rune {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestCount := ',', strings.Count(line, ",")
	for _, cand := range []rune{';', '\t', '|'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}
