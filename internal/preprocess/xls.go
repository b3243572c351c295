package preprocess

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"

	"noiflow/internal/domain"
)

// processXLS reads a legacy BIFF workbook. The rendering path is shared with
// the xlsx reader so both spreadsheet generations normalize identically.
func processXLS(data []byte) (*domain.PreprocessedContent, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xls workbook: %w", err)
	}

	out := &domain.PreprocessedContent{Format: domain.FormatXLS}
	var sb strings.Builder

	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		var rows [][]string
		for _, row := range sheet.GetRows() {
			rows = append(rows, xlsRowValues(row.GetCols()))
		}
		if len(rows) == 0 {
			continue
		}
		out.Sheets++
		headers, body := splitHeader(rows)

		name := sheet.GetName()
		sb.WriteString("[SHEET_START: " + name + "]\n")
		rendered := renderTable(name, headers, body)
		sb.WriteString(rendered.Text)
		sb.WriteString("[SHEET_END: " + name + "]\n\n")

		out.LineItems = append(out.LineItems, rendered.Items...)
		if rendered.IsStatement {
			out.IsFinancialStatement = true
		}
	}

	out.Text = strings.TrimSpace(sb.String())
	return out, nil
}

// xlsRowValues stringifies BIFF cells, falling back to the numeric accessors
// when the string form is empty.
func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
