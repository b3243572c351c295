package preprocess

import (
	"fmt"
	"log"
	"strings"

	"noiflow/internal/domain"
)

// ContentValidator is the gate between preprocessing and extraction. It keeps
// empty templates, cover letters, and non-financial uploads away from the
// expensive extraction path.
type ContentValidator struct {
	// MaterialityThreshold is the minimum magnitude for a number to count
	// as financial data rather than a count, date, or identifier.
	MaterialityThreshold float64
	// MinMaterialValues is how many material values the document needs.
	MinMaterialValues int
}

// NewContentValidator creates a gate with the given thresholds.
func NewContentValidator(materiality float64, minValues int) *ContentValidator {
	return &ContentValidator{MaterialityThreshold: materiality, MinMaterialValues: minValues}
}

// Verdict is the gate's decision plus the evidence behind it.
type Verdict struct {
	HasFinancialContent bool
	MaterialValues      int
	KeywordValues       int
	Reason              string
}

// Check inspects normalized content and decides whether it contains
// extractable financial data. The document passes when it has at least
// MinMaterialValues numbers above the materiality threshold, or at least one
// nonzero number on the same line as a financial keyword. Labels alone never
// pass: an empty statement template has plenty of keywords but no amounts.
func (v *ContentValidator) Check(content *domain.PreprocessedContent) Verdict {
	if content.Empty() {
		return Verdict{Reason: "document produced no readable content"}
	}

	material, keywordAdjacent := 0, 0

	if len(content.LineItems) > 0 {
		// Line items are also rendered into the text; counting both
		// would double every amount, so items take precedence.
		for _, item := range content.LineItems {
			if abs(item.Value) > v.MaterialityThreshold {
				material++
			}
			if item.Value != 0 && containsFinancialKeyword(item.Category) {
				keywordAdjacent++
			}
		}
	} else {
		for _, line := range strings.Split(content.Text, "\n") {
			if strings.HasPrefix(line, "[") {
				continue
			}
			hasKeyword := containsFinancialKeyword(line)
			for _, token := range strings.Fields(line) {
				val, ok := ParseAmount(token)
				if !ok {
					continue
				}
				if abs(val) > v.MaterialityThreshold {
					material++
				}
				if val != 0 && hasKeyword {
					keywordAdjacent++
				}
			}
		}
	}

	verdict := Verdict{MaterialValues: material, KeywordValues: keywordAdjacent}
	switch {
	case material >= v.MinMaterialValues:
		verdict.HasFinancialContent = true
		verdict.Reason = fmt.Sprintf("%d material values above %.0f", material, v.MaterialityThreshold)
	case keywordAdjacent > 0:
		verdict.HasFinancialContent = true
		verdict.Reason = fmt.Sprintf("%d nonzero values adjacent to financial terms", keywordAdjacent)
	default:
		verdict.Reason = fmt.Sprintf("no material financial values found (material=%d, keyword-adjacent=%d)", material, keywordAdjacent)
	}

	log.Printf("preprocess.ContentValidator: pass=%t %s", verdict.HasFinancialContent, verdict.Reason)
	return verdict
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
