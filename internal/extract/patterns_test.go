package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noiflow/internal/domain"
)

func TestPatternExtractor_LineItems(t *testing.T) {
	content := &domain.PreprocessedContent{
		LineItems: []domain.LineItem{
			{Category: "Gross Potential Rent", Value: 50000},
			{Category: "Vacancy Loss", Value: -2500},
			{Category: "Total Operating Expenses", Value: 18000},
			{Category: "Net Operating Income", Value: 29500},
			{Category: "Laundry", Value: 300},
			{Category: "Unrelated Line", Value: 42},
		},
	}

	record, provenance := NewPatternExtractor().Extract(content)

	assert.InDelta(t, 50000, record.GrossPotentialRent, 1e-9)
	// Deductions come back positive regardless of the document's sign.
	assert.InDelta(t, 2500, record.VacancyLoss, 1e-9)
	assert.InDelta(t, 18000, record.OperatingExpenses, 1e-9)
	assert.InDelta(t, 29500, record.NetOperatingIncome, 1e-9)
	assert.InDelta(t, 300, record.LaundryIncome, 1e-9)

	assert.Equal(t, domain.ProvenancePattern, provenance.Get(domain.FieldGrossPotentialRent))
	assert.Equal(t, domain.ProvenancePattern, provenance.Get(domain.FieldVacancyLoss))
	assert.Equal(t, domain.ProvenanceMissing, provenance.Get(domain.FieldConcessions))
}

func TestPatternExtractor_FirstMatchWins(t *testing.T) {
	content := &domain.PreprocessedContent{
		LineItems: []domain.LineItem{
			{Category: "Net Operating Income", Value: 30000},
			{Category: "Net Operating Income (restated)", Value: 99999},
		},
	}

	record, _ := NewPatternExtractor().Extract(content)
	assert.InDelta(t, 30000, record.NetOperatingIncome, 1e-9)
}

func TestPatternExtractor_SpecificLabelBeatsBroad(t *testing.T) {
	// "Gross Potential Rent" must map to GPR even though "rent" style
	// labels also appear under the broad rental income synonyms.
	field, _, ok := matchField("Gross Potential Rent")
	require.True(t, ok)
	assert.Equal(t, domain.FieldGrossPotentialRent, field)

	field, deducted, ok := matchField("Vacancy & Credit Loss")
	require.True(t, ok)
	assert.True(t, deducted)
	assert.Equal(t, domain.FieldVacancyLoss, field)
}

func TestPatternExtractor_TextFallback(t *testing.T) {
	content := &domain.PreprocessedContent{
		Text: `[PAGE_START: 1]
[TEXT_CONTENT]
Operating statement for March
Gross Potential Rent 50,000
Vacancy (2,500)
Total Expenses 18,000
[PAGE_END: 1]`,
	}

	record, provenance := NewPatternExtractor().Extract(content)

	assert.InDelta(t, 50000, record.GrossPotentialRent, 1e-9)
	assert.InDelta(t, 2500, record.VacancyLoss, 1e-9)
	assert.InDelta(t, 18000, record.OperatingExpenses, 1e-9)
	assert.Equal(t, domain.ProvenanceMissing, provenance.Get(domain.FieldNetOperatingIncome))
}

func TestPatternExtractor_NothingMatches(t *testing.T) {
	record, provenance := NewPatternExtractor().Extract(&domain.PreprocessedContent{
		Text: "quarterly inspection notes, no dollar figures",
	})

	for _, f := range domain.AllFields {
		v, _ := record.Value(f)
		assert.Zero(t, v)
		assert.Equal(t, domain.ProvenanceMissing, provenance.Get(f))
	}
}
