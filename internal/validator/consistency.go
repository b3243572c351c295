// Package validator checks and repairs the accounting identities of an
// extracted record and scores per-field confidence.
package validator

import (
	"fmt"
	"log"
	"math"

	"noiflow/internal/domain"
)

// CheckResult is the outcome of one consistency rule.
type CheckResult struct {
	RuleKey  string  `json:"rule_key"`
	Field    string  `json:"field"`
	Passed   bool    `json:"passed"`
	Repaired bool    `json:"repaired"`
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Message  string  `json:"message"`
}

// consistencyRule checks one arithmetic relationship. Identity rules repair
// the record in place; component-sum rules only warn, since itemized
// components are routinely incomplete.
type consistencyRule struct {
	ruleKey string
	check   func(v *ConsistencyValidator, r *domain.FinancialRecord, p domain.ProvenanceMap) []CheckResult
}

// ConsistencyValidator enforces the EGI and NOI identities and cross-checks
// component sums. Derived totals are recomputed from components; a stated
// total that disagrees beyond the tolerance is replaced and marked
// calculated, so the identities always hold on output.
type ConsistencyValidator struct {
	tolerance float64
	rules     []consistencyRule
}

// NewConsistencyValidator creates a validator with the given absolute
// tolerance in currency units.
func NewConsistencyValidator(tolerance float64) *ConsistencyValidator {
	if tolerance <= 0 {
		tolerance = 1.00
	}
	v := &ConsistencyValidator{tolerance: tolerance}
	v.rules = []consistencyRule{
		{
			ruleKey: "identity.effective_gross_income",
			check: func(v *ConsistencyValidator, r *domain.FinancialRecord, p domain.ProvenanceMap) []CheckResult {
				// Without GPR the recomputation would treat the
				// largest income line as zero and clobber a good
				// stated EGI.
				if p.Get(domain.FieldGrossPotentialRent) == domain.ProvenanceMissing {
					return nil
				}
				expected := r.GrossPotentialRent - r.VacancyLoss - r.Concessions - r.BadDebt + r.OtherIncome
				return []CheckResult{v.enforce(r, p, domain.FieldEffectiveGrossIncome, expected, "identity.effective_gross_income")}
			},
		},
		{
			ruleKey: "identity.net_operating_income",
			check: func(v *ConsistencyValidator, r *domain.FinancialRecord, p domain.ProvenanceMap) []CheckResult {
				// EGI is enforced first, so it is authoritative here.
				if p.Get(domain.FieldEffectiveGrossIncome) == domain.ProvenanceMissing {
					return nil
				}
				expected := r.EffectiveGrossIncome - r.OperatingExpenses
				return []CheckResult{v.enforce(r, p, domain.FieldNetOperatingIncome, expected, "identity.net_operating_income")}
			},
		},
		{
			ruleKey: "sum.operating_expenses",
			check: func(v *ConsistencyValidator, r *domain.FinancialRecord, p domain.ProvenanceMap) []CheckResult {
				return v.componentSum(r, p, domain.FieldOperatingExpenses, domain.OpExComponents, "sum.operating_expenses")
			},
		},
		{
			ruleKey: "sum.other_income",
			check: func(v *ConsistencyValidator, r *domain.FinancialRecord, p domain.ProvenanceMap) []CheckResult {
				return v.componentSum(r, p, domain.FieldOtherIncome, domain.OtherIncomeComponents, "sum.other_income")
			},
		},
	}
	return v
}

// ValidateAndRepair runs every rule in order, mutating the record where a
// repairable rule found a violation. Repaired and filled-in fields get
// calculated provenance. The pass is idempotent: a second run over repaired
// output reports all rules passed.
func (v *ConsistencyValidator) ValidateAndRepair(r *domain.FinancialRecord, p domain.ProvenanceMap) []CheckResult {
	var results []CheckResult
	for _, rule := range v.rules {
		results = append(results, rule.check(v, r, p)...)
	}
	for _, res := range results {
		if !res.Passed {
			log.Printf("validator.ConsistencyValidator: %s", res.Message)
		}
	}
	return results
}

func (v *ConsistencyValidator) approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= v.tolerance
}

// enforce makes the named field equal the expected value, filling a missing
// field or replacing a stated one that disagrees beyond the tolerance.
func (v *ConsistencyValidator) enforce(r *domain.FinancialRecord, p domain.ProvenanceMap, field string, expected float64, ruleKey string) CheckResult {
	actual, _ := r.Value(field)

	if p.Get(field) == domain.ProvenanceMissing {
		r.SetValue(field, expected)
		p[field] = domain.ProvenanceCalculated
		return CheckResult{
			RuleKey: ruleKey, Field: field, Passed: true, Repaired: true,
			Expected: expected, Actual: expected,
			Message: fmt.Sprintf("%s: %s missing, derived as %.2f", ruleKey, field, expected),
		}
	}

	if v.approxEqual(actual, expected) {
		return CheckResult{
			RuleKey: ruleKey, Field: field, Passed: true,
			Expected: expected, Actual: actual,
			Message: fmt.Sprintf("%s: %s holds", ruleKey, field),
		}
	}

	r.SetValue(field, expected)
	p[field] = domain.ProvenanceCalculated
	return CheckResult{
		RuleKey: ruleKey, Field: field, Passed: false, Repaired: true,
		Expected: expected, Actual: actual,
		Message: fmt.Sprintf("%s: %s stated as %.2f but components give %.2f, repaired", ruleKey, field, actual, expected),
	}
}

// componentSum warns when itemized components disagree with their stated
// total. Components are routinely incomplete, so this never repairs: a sum
// below the total is fine, a sum above it is flagged.
func (v *ConsistencyValidator) componentSum(r *domain.FinancialRecord, p domain.ProvenanceMap, totalField string, components []string, ruleKey string) []CheckResult {
	if p.Get(totalField) == domain.ProvenanceMissing {
		return nil
	}
	sum := 0.0
	present := 0
	for _, f := range components {
		if p.Get(f) == domain.ProvenanceMissing {
			continue
		}
		val, _ := r.Value(f)
		sum += val
		present++
	}
	if present == 0 {
		return nil
	}
	total, _ := r.Value(totalField)
	passed := sum <= total+v.tolerance
	msg := fmt.Sprintf("%s: %d components sum to %.2f against total %.2f", ruleKey, present, sum, total)
	if !passed {
		msg += " (components exceed total)"
	}
	return []CheckResult{{
		RuleKey: ruleKey, Field: totalField, Passed: passed,
		Expected: total, Actual: sum, Message: msg,
	}}
}
