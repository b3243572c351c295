package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noiflow/internal/domain"
)

func modelProvenance(fields ...string) domain.ProvenanceMap {
	p := make(domain.ProvenanceMap)
	for _, f := range fields {
		p[f] = domain.ProvenanceModel
	}
	return p
}

func TestConsistency_DerivesMissingEGIAndNOI(t *testing.T) {
	record := &domain.FinancialRecord{
		GrossPotentialRent: 50000,
		VacancyLoss:        2500,
		OtherIncome:        300,
		OperatingExpenses:  18000,
	}
	prov := modelProvenance(
		domain.FieldGrossPotentialRent,
		domain.FieldVacancyLoss,
		domain.FieldOtherIncome,
		domain.FieldOperatingExpenses,
	)

	v := NewConsistencyValidator(1.00)
	results := v.ValidateAndRepair(record, prov)

	assert.InDelta(t, 47800, record.EffectiveGrossIncome, 1e-9)
	assert.InDelta(t, 29800, record.NetOperatingIncome, 1e-9)
	assert.Equal(t, domain.ProvenanceCalculated, prov.Get(domain.FieldEffectiveGrossIncome))
	assert.Equal(t, domain.ProvenanceCalculated, prov.Get(domain.FieldNetOperatingIncome))

	for _, r := range results {
		assert.True(t, r.Passed, r.Message)
	}
}

func TestConsistency_RepairsStatedEGI(t *testing.T) {
	record := &domain.FinancialRecord{
		GrossPotentialRent:   50000,
		VacancyLoss:          2500,
		EffectiveGrossIncome: 99999, // disagrees with components
	}
	prov := modelProvenance(
		domain.FieldGrossPotentialRent,
		domain.FieldVacancyLoss,
		domain.FieldEffectiveGrossIncome,
	)

	v := NewConsistencyValidator(1.00)
	results := v.ValidateAndRepair(record, prov)

	assert.InDelta(t, 47500, record.EffectiveGrossIncome, 1e-9)
	assert.Equal(t, domain.ProvenanceCalculated, prov.Get(domain.FieldEffectiveGrossIncome))

	var egiResult *CheckResult
	for i := range results {
		if results[i].RuleKey == "identity.effective_gross_income" {
			egiResult = &results[i]
		}
	}
	require.NotNil(t, egiResult)
	assert.False(t, egiResult.Passed)
	assert.True(t, egiResult.Repaired)
	assert.InDelta(t, 99999, egiResult.Actual, 1e-9)
}

func TestConsistency_WithinToleranceUntouched(t *testing.T) {
	record := &domain.FinancialRecord{
		GrossPotentialRent:   50000,
		EffectiveGrossIncome: 50000.75, // rounding drift under 1.00
	}
	prov := modelProvenance(domain.FieldGrossPotentialRent, domain.FieldEffectiveGrossIncome)

	v := NewConsistencyValidator(1.00)
	v.ValidateAndRepair(record, prov)

	assert.InDelta(t, 50000.75, record.EffectiveGrossIncome, 1e-9)
	assert.Equal(t, domain.ProvenanceModel, prov.Get(domain.FieldEffectiveGrossIncome))
}

func TestConsistency_Idempotent(t *testing.T) {
	record := &domain.FinancialRecord{
		GrossPotentialRent:   50000,
		VacancyLoss:          2500,
		EffectiveGrossIncome: 99999,
		OperatingExpenses:    18000,
		NetOperatingIncome:   1,
	}
	prov := modelProvenance(
		domain.FieldGrossPotentialRent,
		domain.FieldVacancyLoss,
		domain.FieldEffectiveGrossIncome,
		domain.FieldOperatingExpenses,
		domain.FieldNetOperatingIncome,
	)

	v := NewConsistencyValidator(1.00)
	v.ValidateAndRepair(record, prov)
	second := v.ValidateAndRepair(record, prov)

	for _, r := range second {
		assert.True(t, r.Passed, r.Message)
		assert.False(t, r.Repaired, r.Message)
	}
}

func TestConsistency_SkipsWithoutGPR(t *testing.T) {
	record := &domain.FinancialRecord{EffectiveGrossIncome: 40000, OperatingExpenses: 15000}
	prov := modelProvenance(domain.FieldEffectiveGrossIncome, domain.FieldOperatingExpenses)

	v := NewConsistencyValidator(1.00)
	v.ValidateAndRepair(record, prov)

	// A stated EGI must not be clobbered when GPR is unknown; NOI is still
	// derivable from EGI and OpEx.
	assert.InDelta(t, 40000, record.EffectiveGrossIncome, 1e-9)
	assert.Equal(t, domain.ProvenanceModel, prov.Get(domain.FieldEffectiveGrossIncome))
	assert.InDelta(t, 25000, record.NetOperatingIncome, 1e-9)
	assert.Equal(t, domain.ProvenanceCalculated, prov.Get(domain.FieldNetOperatingIncome))
}

func TestConsistency_ComponentSumWarning(t *testing.T) {
	record := &domain.FinancialRecord{
		OperatingExpenses: 10000,
		PropertyTaxes:     6000,
		Insurance:         5000, // components exceed the stated total
	}
	prov := modelProvenance(
		domain.FieldOperatingExpenses,
		domain.FieldPropertyTaxes,
		domain.FieldInsurance,
	)

	v := NewConsistencyValidator(1.00)
	results := v.ValidateAndRepair(record, prov)

	var sumResult *CheckResult
	for i := range results {
		if results[i].RuleKey == "sum.operating_expenses" {
			sumResult = &results[i]
		}
	}
	require.NotNil(t, sumResult)
	assert.False(t, sumResult.Passed)
	assert.False(t, sumResult.Repaired)
	// Warning only: the stated total stays.
	assert.InDelta(t, 10000, record.OperatingExpenses, 1e-9)
}
