package preprocess

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"noiflow/internal/domain"
)

// processXLSX reads every sheet of a modern Excel workbook and renders each
// one independently, so a workbook mixing a financial statement sheet with
// lookup sheets keeps the statement structure intact.
func processXLSX(data []byte) (*domain.PreprocessedContent, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx workbook: %w", err)
	}
	defer f.Close()

	out := &domain.PreprocessedContent{Format: domain.FormatXLSX}
	var sb strings.Builder

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		out.Sheets++
		headers, body := splitHeader(rows)

		sb.WriteString("[SHEET_START: " + sheet + "]\n")
		rendered := renderTable(sheet, headers, body)
		sb.WriteString(rendered.Text)
		sb.WriteString("[SHEET_END: " + sheet + "]\n\n")

		out.LineItems = append(out.LineItems, rendered.Items...)
		if rendered.IsStatement {
			out.IsFinancialStatement = true
		}
	}

	out.Text = strings.TrimSpace(sb.String())
	return out, nil
}

// splitHeader peels off the first row as headers when it looks like labels
// rather than data. A first row that already carries numbers is kept as data
// and synthetic empty headers are used instead.
func splitHeader(rows [][]string) (headers []string, body [][]string) {
	if len(rows) == 0 {
		return nil, nil
	}
	first := rows[0]
	numeric := 0
	for _, c := range first {
		if LooksNumeric(strings.TrimSpace(c)) {
			numeric++
		}
	}
	if numeric == 0 && !rowEmpty(first) {
		return first, rows[1:]
	}
	return make([]string, len(first)), rows
}
