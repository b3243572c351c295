package preprocess

import (
	"strings"

	"noiflow/internal/domain"
)

// financialKeywords flag labels that indicate real-estate operating data. The
// list is matched case-insensitively as substrings.
var financialKeywords = []string{
	"rent",
	"income",
	"revenue",
	"vacancy",
	"concession",
	"bad debt",
	"expense",
	"tax",
	"insurance",
	"maintenance",
	"repair",
	"utilities",
	"management",
	"noi",
	"net operating",
	"egi",
	"effective gross",
	"gross potential",
	"operating",
	"fee",
	"reimbursement",
	"laundry",
	"parking",
}

func containsFinancialKeyword(s string) bool {
	l := strings.ToLower(s)
	for _, kw := range financialKeywords {
		if strings.Contains(l, kw) {
			return true
		}
	}
	return false
}

// renderedTable is the text plus structured output of one sheet or CSV body.
type renderedTable struct {
	Text        string
	Items       []domain.LineItem
	IsStatement bool
}

// renderTable converts a header row plus data rows into prompt-ready text.
// When a category/value pair can be classified and the labels look financial,
// the table is rendered one "Category: value" line per row with section
// markers for label-only rows. Otherwise it falls back to a generic pipe
// delimited dump so no content is silently lost.
func renderTable(name string, headers []string, rows [][]string) renderedTable {
	cls := ClassifyColumns(headers, rows)

	var items []domain.LineItem
	var sb strings.Builder
	keywordHit := false

	if cls.CategoryCol >= 0 && cls.ValueCol >= 0 {
		sb.WriteString("[FINANCIAL_STATEMENT_FORMAT]\n")
		if name != "" {
			sb.WriteString("[STATEMENT: " + name + "]\n")
		}
		lastCategory := ""
		for _, row := range rows {
			category := cell(row, cls.CategoryCol)
			raw := cell(row, cls.ValueCol)
			value, numeric := ParseAmount(raw)

			switch {
			case category != "" && !numeric && rowOtherwiseEmpty(row, cls, raw):
				// A label with no amount anywhere is a section heading.
				sb.WriteString("[SECTION: " + category + "]\n")
				lastCategory = ""
				continue
			case category == "" && numeric && lastCategory != "":
				category = lastCategory
			case category == "" && !numeric:
				continue
			}
			if category == "" {
				continue
			}
			lastCategory = category
			if containsFinancialKeyword(category) {
				keywordHit = true
			}
			if numeric {
				items = append(items, domain.LineItem{Category: category, Value: value, RawValue: raw})
				sb.WriteString(category + ": " + raw + "\n")
			} else {
				sb.WriteString(category + "\n")
			}
		}
		if len(items) > 0 && keywordHit {
			return renderedTable{Text: sb.String(), Items: items, IsStatement: true}
		}
	}

	// Generic fallback: keep everything, pipe delimited. Pairs harvested by
	// a classification that did not pan out are discarded with it.
	items = nil
	sb.Reset()
	sb.WriteString("[TABLE_FORMAT]\n")
	if name != "" {
		sb.WriteString("[TABLE: " + name + "]\n")
	}
	if len(headers) > 0 {
		sb.WriteString(strings.Join(trimAll(headers), " | ") + "\n")
	}
	for _, row := range rows {
		if rowEmpty(row) {
			continue
		}
		sb.WriteString(strings.Join(trimAll(row), " | ") + "\n")
	}
	return renderedTable{Text: sb.String(), Items: items}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowOtherwiseEmpty reports whether the row carries no numeric content outside
// the category column, i.e. it is a pure heading row.
func rowOtherwiseEmpty(row []string, cls ColumnClassification, valueCell string) bool {
	if strings.TrimSpace(valueCell) != "" {
		return false
	}
	for j, c := range row {
		if j == cls.CategoryCol {
			continue
		}
		if LooksNumeric(strings.TrimSpace(c)) {
			return false
		}
	}
	return true
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
