// Package compare derives period-over-period movements from extracted
// records: current month against prior month, actuals against budget, and
// same month prior year.
package compare

import (
	"math"

	"noiflow/internal/domain"
)

// Kind names a supported comparison.
type Kind string

const (
	KindMonthVsPrior   Kind = "month_vs_prior"
	KindActualVsBudget Kind = "actual_vs_budget"
	KindYearVsYear     Kind = "year_vs_year"
)

// KindForRole maps a reference document's role onto the comparison it backs.
func KindForRole(role domain.DocumentRole) (Kind, bool) {
	switch role {
	case domain.RolePrior:
		return KindMonthVsPrior, true
	case domain.RoleBudget:
		return KindActualVsBudget, true
	case domain.RolePriorYear:
		return KindYearVsYear, true
	default:
		return "", false
	}
}

// FieldDelta is the movement of one field between two records.
type FieldDelta struct {
	Field     string  `json:"field"`
	Current   float64 `json:"current"`
	Reference float64 `json:"reference"`
	Change    float64 `json:"change"`
	// PercentChange is only meaningful when Comparable is true; a zero
	// reference value has no defined percentage movement.
	PercentChange float64 `json:"percent_change"`
	Comparable    bool    `json:"comparable"`
	Favorable     bool    `json:"favorable"`
}

// Comparison is the full delta set between a current record and one
// reference record.
type Comparison struct {
	Kind   Kind         `json:"kind"`
	Deltas []FieldDelta `json:"deltas"`
}

// expenseLike fields are favorable when they move down.
var expenseLike = map[string]bool{
	domain.FieldVacancyLoss:        true,
	domain.FieldConcessions:        true,
	domain.FieldBadDebt:            true,
	domain.FieldOperatingExpenses:  true,
	domain.FieldPropertyTaxes:      true,
	domain.FieldInsurance:          true,
	domain.FieldRepairsMaintenance: true,
	domain.FieldUtilities:          true,
	domain.FieldManagementFees:     true,
}

// Records compares two records field by field. Only fields present in both
// records (non-missing provenance on each side) produce a delta, so a field
// the reference document never stated cannot fake a 100% swing.
func Records(kind Kind, current, reference *domain.FinancialRecord, currentProv, referenceProv domain.ProvenanceMap) *Comparison {
	out := &Comparison{Kind: kind}
	if current == nil || reference == nil {
		return out
	}
	for _, f := range domain.AllFields {
		if currentProv.Get(f) == domain.ProvenanceMissing || referenceProv.Get(f) == domain.ProvenanceMissing {
			continue
		}
		cur, _ := current.Value(f)
		ref, _ := reference.Value(f)
		delta := FieldDelta{
			Field:     f,
			Current:   cur,
			Reference: ref,
			Change:    cur - ref,
		}
		if ref != 0 {
			delta.PercentChange = (cur - ref) / math.Abs(ref) * 100
			delta.Comparable = true
		}
		if expenseLike[f] {
			delta.Favorable = delta.Change <= 0
		} else {
			delta.Favorable = delta.Change >= 0
		}
		out.Deltas = append(out.Deltas, delta)
	}
	return out
}
