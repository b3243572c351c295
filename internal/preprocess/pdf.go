package preprocess

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"noiflow/internal/domain"
)

// processPDF extracts text page by page. Lines that look like statement rows
// (a label followed by an amount) are grouped into table blocks and harvested
// as line items; remaining prose is kept as ordered text blocks on the same
// page so nothing is reordered across pages.
func processPDF(data []byte) (*domain.PreprocessedContent, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		// Damaged xref tables are common in scanner output. Salvage
		// whatever printable text is in the byte stream.
		text := extractPrintableText(data)
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("opening pdf: %w", err)
		}
		return &domain.PreprocessedContent{
			Text:   "[PAGE_START: 1]\n[TEXT_CONTENT]\n" + strings.TrimSpace(text) + "\n[PAGE_END: 1]",
			Format: domain.FormatPDF,
			Pages:  1,
		}, nil
	}

	out := &domain.PreprocessedContent{Format: domain.FormatPDF}
	var sb strings.Builder

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		lines := pageLines(page)
		if len(lines) == 0 {
			continue
		}
		out.Pages++

		sb.WriteString(fmt.Sprintf("[PAGE_START: %d]\n", pageNum))
		writePageBlocks(&sb, lines, out)
		sb.WriteString(fmt.Sprintf("[PAGE_END: %d]\n\n", pageNum))
	}

	out.Text = strings.TrimSpace(sb.String())
	return out, nil
}

// pageLines reconstructs visual lines from positioned text runs.
func pageLines(page pdf.Page) []string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}
	var lines []string
	for _, row := range rows {
		var b strings.Builder
		for _, txt := range row.Content {
			b.WriteString(txt.S)
			b.WriteByte(' ')
		}
		line := strings.Join(strings.Fields(b.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// writePageBlocks splits a page's lines into alternating table and text
// blocks, keeping page order, and collects line items from table rows.
func writePageBlocks(sb *strings.Builder, lines []string, out *domain.PreprocessedContent) {
	flushText := func(buf []string) {
		if len(buf) == 0 {
			return
		}
		sb.WriteString("[TEXT_CONTENT]\n")
		sb.WriteString(strings.Join(buf, "\n"))
		sb.WriteByte('\n')
	}

	var textBuf []string
	inTable := false
	for _, line := range lines {
		category, raw, value, ok := splitLabelAmount(line)
		if ok {
			if !inTable {
				flushText(textBuf)
				textBuf = nil
				sb.WriteString("[FINANCIAL_STATEMENT_FORMAT]\n")
				inTable = true
			}
			sb.WriteString(category + ": " + raw + "\n")
			out.LineItems = append(out.LineItems, domain.LineItem{Category: category, Value: value, RawValue: raw})
			if containsFinancialKeyword(category) {
				out.IsFinancialStatement = true
			}
			continue
		}
		inTable = false
		textBuf = append(textBuf, line)
	}
	flushText(textBuf)
}

// splitLabelAmount detects "Label .... $1,234.56" statement rows. The label
// must contain at least one letter so pure number rows are left as text.
func splitLabelAmount(line string) (category, raw string, value float64, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", 0, false
	}
	last := fields[len(fields)-1]
	v, numeric := ParseAmount(last)
	if !numeric {
		return "", "", 0, false
	}
	label := strings.Join(fields[:len(fields)-1], " ")
	label = strings.Trim(label, " .:-…")
	if label == "" || !strings.ContainsFunc(label, isLetter) {
		return "", "", 0, false
	}
	return label, last, v, true
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// extractPrintableText keeps printable runes and whitespace from a raw byte
// stream, dropping binary noise.
func extractPrintableText(in []byte) string {
	var out bytes.Buffer
	for len(in) > 0 {
		r, size := utf8.DecodeRune(in)
		if r == utf8.RuneError && size == 1 {
			b := in[0]
			if b == '\n' || b == '\r' || b == '\t' || (b >= 32 && b < 127) {
				out.WriteByte(b)
			}
			in = in[1:]
			continue
		}
		in = in[size:]
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r < 127) || r > 127 {
			out.WriteRune(r)
		}
	}
	return out.String()
}
