package preprocess

import (
	"strings"

	"noiflow/internal/domain"
)

// sectionHeadings maps normalized heading text to the marker emitted above the
// section, so a model prompt keeps the statement's income/expense structure.
var sectionHeadings = map[string]string{
	"income":             "INCOME",
	"revenue":            "INCOME",
	"rental income":      "INCOME",
	"other income":       "OTHER_INCOME",
	"expenses":           "EXPENSES",
	"operating expenses": "EXPENSES",
	"summary":            "SUMMARY",
	"totals":             "SUMMARY",
}

// processText normalizes a plain-text statement: headings become section
// markers and label/amount rows are harvested as line items.
func processText(data []byte) (*domain.PreprocessedContent, error) {
	out := &domain.PreprocessedContent{Format: domain.FormatText}
	var sb strings.Builder

	for _, rawLine := range strings.Split(string(data), "\n") {
		line := strings.Join(strings.Fields(rawLine), " ")
		if line == "" {
			continue
		}
		if marker, ok := sectionHeadings[strings.ToLower(strings.Trim(line, " :"))]; ok {
			sb.WriteString("[SECTION: " + marker + "]\n")
			continue
		}
		if category, raw, value, ok := splitLabelAmount(line); ok {
			out.LineItems = append(out.LineItems, domain.LineItem{Category: category, Value: value, RawValue: raw})
			if containsFinancialKeyword(category) {
				out.IsFinancialStatement = true
			}
			sb.WriteString(category + ": " + raw + "\n")
			continue
		}
		sb.WriteString(line + "\n")
	}

	out.Text = strings.TrimSpace(sb.String())
	return out, nil
}
