package extract

import (
	"log"
	"strings"

	"noiflow/internal/domain"
	"noiflow/internal/preprocess"
)

// fieldSynonyms maps each schema field onto the statement labels that name
// it. Order matters: earlier entries win when a label matches more than one
// field, so the specific rows ("gross potential rent") come before the broad
// ones ("rental income").
var fieldSynonyms = []struct {
	Field    string
	Labels   []string
	Deducted bool
}{
	{Field: domain.FieldGrossPotentialRent, Labels: []string{"gross potential rent", "gpr", "gross scheduled income", "scheduled rent", "potential rent", "market rent", "rental income"}},
	{Field: domain.FieldVacancyLoss, Labels: []string{"vacancy loss", "vacancy & credit loss", "loss to vacancy", "vacancy"}, Deducted: true},
	{Field: domain.FieldConcessions, Labels: []string{"concessions", "free rent", "move-in special"}, Deducted: true},
	{Field: domain.FieldBadDebt, Labels: []string{"bad debt", "credit loss", "write-off", "uncollected rent"}, Deducted: true},
	{Field: domain.FieldEffectiveGrossIncome, Labels: []string{"effective gross income", "egi", "total revenue", "total income", "net rental income"}},
	{Field: domain.FieldNetOperatingIncome, Labels: []string{"net operating income", "noi", "net income from operations"}},
	{Field: domain.FieldOperatingExpenses, Labels: []string{"total operating expenses", "operating expenses", "total expenses", "opex"}},
	{Field: domain.FieldPropertyTaxes, Labels: []string{"property tax", "real estate tax", "taxes"}},
	{Field: domain.FieldInsurance, Labels: []string{"insurance"}},
	{Field: domain.FieldRepairsMaintenance, Labels: []string{"repairs & maintenance", "repairs and maintenance", "maintenance", "repairs"}},
	{Field: domain.FieldUtilities, Labels: []string{"utilities", "water & sewer", "electric", "gas"}},
	{Field: domain.FieldManagementFees, Labels: []string{"management fee", "property management"}},
	{Field: domain.FieldParkingIncome, Labels: []string{"parking"}},
	{Field: domain.FieldLaundryIncome, Labels: []string{"laundry"}},
	{Field: domain.FieldLateFees, Labels: []string{"late fee", "late charge"}},
	{Field: domain.FieldPetFees, Labels: []string{"pet fee", "pet rent"}},
	{Field: domain.FieldApplicationFees, Labels: []string{"application fee"}},
	{Field: domain.FieldStorageFees, Labels: []string{"storage"}},
	{Field: domain.FieldAmenityFees, Labels: []string{"amenity"}},
	{Field: domain.FieldUtilityReimbursements, Labels: []string{"utility reimbursement", "rubs", "utility billback"}},
	{Field: domain.FieldCleaningFees, Labels: []string{"cleaning"}},
	{Field: domain.FieldCancellationFees, Labels: []string{"cancellation", "lease break"}},
	{Field: domain.FieldMiscellaneousIncome, Labels: []string{"miscellaneous income", "misc income", "other income"}},
}

// PatternExtractor is the deterministic terminal fallback. It never errors:
// when the model path is exhausted, whatever fields match known labels become
// the record, and everything else stays missing.
type PatternExtractor struct{}

// NewPatternExtractor creates a PatternExtractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract matches line items (and, when there are none, raw text lines)
// against the synonym table. Deducted fields are stored as positive
// magnitudes regardless of how the document signed them.
func (p *PatternExtractor) Extract(content *domain.PreprocessedContent) (*domain.FinancialRecord, domain.ProvenanceMap) {
	record := &domain.FinancialRecord{}
	provenance := make(domain.ProvenanceMap, len(domain.AllFields))
	for _, f := range domain.AllFields {
		provenance[f] = domain.ProvenanceMissing
	}

	items := content.LineItems
	if len(items) == 0 {
		items = itemsFromText(content.Text)
	}

	matched := 0
	for _, item := range items {
		field, deducted, ok := matchField(item.Category)
		if !ok || provenance[field] != domain.ProvenanceMissing {
			continue
		}
		value := item.Value
		if deducted && value < 0 {
			value = -value
		}
		record.SetValue(field, value)
		provenance[field] = domain.ProvenancePattern
		matched++
	}

	log.Printf("extract.PatternExtractor: matched %d of %d line items", matched, len(items))
	return record, provenance
}

func matchField(category string) (field string, deducted, ok bool) {
	label := strings.ToLower(strings.TrimSpace(category))
	if label == "" {
		return "", false, false
	}
	for _, entry := range fieldSynonyms {
		for _, syn := range entry.Labels {
			if strings.Contains(label, syn) {
				return entry.Field, entry.Deducted, true
			}
		}
	}
	return "", false, false
}

// itemsFromText recovers (label, amount) pairs from free text when the
// preprocessor produced no structured line items.
func itemsFromText(text string) []domain.LineItem {
	var items []domain.LineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		raw := fields[len(fields)-1]
		value, numeric := preprocess.ParseAmount(raw)
		if !numeric {
			continue
		}
		label := strings.Trim(strings.Join(fields[:len(fields)-1], " "), " .:-")
		if label == "" {
			continue
		}
		items = append(items, domain.LineItem{Category: label, Value: value, RawValue: raw})
	}
	return items
}
