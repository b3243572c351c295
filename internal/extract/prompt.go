package extract

import (
	"fmt"
	"strings"

	"noiflow/internal/domain"
)

// Attempt strategies, in escalation order.
const (
	StrategyStandard      = "standard"
	StrategyExplicit      = "explicit"
	StrategyWorkedExample = "worked_example"
)

// StrategyForAttempt maps a 1-based attempt number onto an escalating prompt
// strategy. Attempts beyond the known strategies reuse the strongest one.
func StrategyForAttempt(n int) string {
	switch n {
	case 1:
		return StrategyStandard
	case 2:
		return StrategyExplicit
	default:
		return StrategyWorkedExample
	}
}

// PromptBuilder assembles role-aware extraction prompts.
type PromptBuilder struct {
	// MaxDocumentChars truncates the document text to keep the prompt
	// inside the provider's context budget.
	MaxDocumentChars int
}

// NewPromptBuilder creates a builder with the given truncation limit.
func NewPromptBuilder(maxDocumentChars int) *PromptBuilder {
	if maxDocumentChars <= 0 {
		maxDocumentChars = 12000
	}
	return &PromptBuilder{MaxDocumentChars: maxDocumentChars}
}

// Build assembles the prompt for one attempt. The strategy escalates across
// retries: the explicit variant spells out the failure of the previous
// attempt, and the worked-example variant demonstrates a full extraction.
func (b *PromptBuilder) Build(role domain.DocumentRole, documentText, strategy string) string {
	var sb strings.Builder

	sb.WriteString(`You are a real-estate financial analyst. Extract operating metrics from the provided financial document into the exact JSON structure below.

DOCUMENT ROLE: ` + roleDescription(role) + `

RULES:
- Values are monthly amounts in the document's currency, as plain numbers (no symbols, no thousands separators).
- vacancy_loss, concessions, and bad_debt are deductions; report them as POSITIVE numbers even when the document shows them in parentheses or with a minus sign.
- If effective_gross_income is not stated, derive it: gross_potential_rent - vacancy_loss - concessions - bad_debt + other_income.
- If net_operating_income is not stated, derive it: effective_gross_income - operating_expenses.
- If a field does not appear in the document and cannot be derived, use null. NEVER invent a value and NEVER return a record of all zeros.

LABEL SYNONYMS (map these onto the schema fields):
- gross_potential_rent: "Gross Potential Rent", "GPR", "Scheduled Rent", "Gross Scheduled Income", "Potential Rent", "Market Rent", "Rental Income"
- vacancy_loss: "Vacancy", "Vacancy Loss", "Vacancy & Credit Loss", "Loss to Vacancy"
- concessions: "Concessions", "Rent Concessions", "Free Rent", "Move-in Specials"
- bad_debt: "Bad Debt", "Credit Loss", "Write-offs", "Uncollected Rent"
- effective_gross_income: "Effective Gross Income", "EGI", "Total Revenue", "Total Income", "Net Rental Income"
- operating_expenses: "Operating Expenses", "Total Expenses", "OpEx", "Total Operating Expenses"
- net_operating_income: "Net Operating Income", "NOI", "Net Income from Operations"

`)

	switch strategy {
	case StrategyExplicit:
		sb.WriteString(`RETRY NOTE: A previous pass over this document returned unusable output. Read the document again carefully. The amounts ARE present in the text below; find the line items, map each label through the synonym list, and return real numbers. Respond with the JSON object only.

`)
	case StrategyWorkedExample:
		sb.WriteString(`RETRY NOTE: Previous passes failed. Follow this worked example exactly.

Example document:
  Gross Potential Rent: 50,000
  Vacancy: (2,500)
  Laundry: 300
  Total Expenses: 18,000

Example output:
  {"gross_potential_rent": 50000, "vacancy_loss": 2500, "concessions": null, "bad_debt": null, "other_income": 300, "effective_gross_income": 47800, "operating_expenses": 18000, "property_taxes": null, "insurance": null, "repairs_maintenance": null, "utilities": null, "management_fees": null, "parking_income": null, "laundry_income": 300, "late_fees": null, "pet_fees": null, "application_fees": null, "storage_fees": null, "amenity_fees": null, "utility_reimbursements": null, "cleaning_fees": null, "cancellation_fees": null, "miscellaneous_income": null, "net_operating_income": 29800}

Note how the parenthesized vacancy became a positive deduction, EGI was derived as 50000 - 2500 + 300, and NOI as 47800 - 18000. Now do the same for the real document.

`)
	}

	sb.WriteString("Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. The object must contain exactly these keys:\n")
	sb.WriteString(schemaSkeleton())
	sb.WriteString("\n\nDOCUMENT:\n")
	sb.WriteString(b.truncate(documentText))
	return sb.String()
}

func (b *PromptBuilder) truncate(text string) string {
	if len(text) <= b.MaxDocumentChars {
		return text
	}
	return text[:b.MaxDocumentChars] + "\n[DOCUMENT TRUNCATED]"
}

func roleDescription(role domain.DocumentRole) string {
	switch role {
	case domain.RoleCurrent:
		return "current month actuals"
	case domain.RolePrior:
		return "prior month actuals"
	case domain.RoleBudget:
		return "budgeted amounts for the current period"
	case domain.RolePriorYear:
		return "same month, prior year actuals"
	default:
		return "unspecified period"
	}
}

func schemaSkeleton() string {
	parts := make([]string, len(domain.AllFields))
	for i, f := range domain.AllFields {
		parts[i] = fmt.Sprintf("  %q: <number or null>", f)
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n}"
}
