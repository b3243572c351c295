package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noiflow/internal/domain"
)

const goodResponse = `{
	"gross_potential_rent": 50000,
	"vacancy_loss": 2500,
	"concessions": null,
	"bad_debt": null,
	"other_income": 300,
	"effective_gross_income": 47800,
	"operating_expenses": 18000,
	"property_taxes": null,
	"insurance": null,
	"repairs_maintenance": null,
	"utilities": null,
	"management_fees": null,
	"parking_income": null,
	"laundry_income": 300,
	"late_fees": null,
	"pet_fees": null,
	"application_fees": null,
	"storage_fees": null,
	"amenity_fees": null,
	"utility_reimbursements": null,
	"cleaning_fees": null,
	"cancellation_fees": null,
	"miscellaneous_income": null,
	"net_operating_income": 29800
}`

func TestParseResponse_StrictJSON(t *testing.T) {
	parsed, err := ParseResponse(goodResponse)
	require.NoError(t, err)

	assert.Equal(t, "strict_json", parsed.Outcome)
	assert.InDelta(t, 50000, parsed.Record.GrossPotentialRent, 1e-9)
	assert.InDelta(t, 29800, parsed.Record.NetOperatingIncome, 1e-9)
	assert.Equal(t, domain.ProvenanceModel, parsed.Provenance.Get(domain.FieldGrossPotentialRent))
	assert.Equal(t, domain.ProvenanceMissing, parsed.Provenance.Get(domain.FieldConcessions))
}

func TestParseResponse_FencedJSON(t *testing.T) {
	raw := "Here is the extraction you asked for:\n```json\n" + goodResponse + "\n```\nLet me know if you need anything else."

	parsed, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "embedded_json", parsed.Outcome)
	assert.InDelta(t, 18000, parsed.Record.OperatingExpenses, 1e-9)
}

func TestParseResponse_FieldScrape(t *testing.T) {
	// Malformed JSON (trailing commas, unquoted) that still names fields.
	raw := `gross_potential_rent: 50,000, operating_expenses: 18000, net_operating_income: 29800,`

	parsed, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "field_scrape", parsed.Outcome)
	assert.InDelta(t, 50000, parsed.Record.GrossPotentialRent, 1e-9)
	assert.InDelta(t, 18000, parsed.Record.OperatingExpenses, 1e-9)
	assert.Equal(t, domain.ProvenanceMissing, parsed.Provenance.Get(domain.FieldVacancyLoss))
}

func TestParseResponse_MissingFieldsDefaultNull(t *testing.T) {
	parsed, err := ParseResponse(`{"gross_potential_rent": 1000}`)
	require.NoError(t, err)
	assert.Equal(t, domain.ProvenanceModel, parsed.Provenance.Get(domain.FieldGrossPotentialRent))
	assert.Equal(t, domain.ProvenanceMissing, parsed.Provenance.Get(domain.FieldNetOperatingIncome))
}

func TestParseResponse_NonNumericValueRejected(t *testing.T) {
	_, err := ParseResponse(`{"gross_potential_rent": "a lot"}`)
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestParseResponse_NoJSON(t *testing.T) {
	_, err := ParseResponse("I could not find any financial data in this document.")
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)

	_, err = ParseResponse("")
	assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
}

func TestFirstBalancedObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, firstBalancedObject(`prefix {"a": {"b": 1}} suffix`))
	assert.Equal(t, `{"s": "br}ace"}`, firstBalancedObject(`{"s": "br}ace"}`))
	assert.Empty(t, firstBalancedObject("no braces here"))
	assert.Empty(t, firstBalancedObject(`{"unterminated": 1`))
}
