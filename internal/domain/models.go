package domain

import (
	"time"
)

// RawDocument is the single input of a pipeline invocation. It is ephemeral:
// the preprocessor consumes it once and no component retains the bytes.
type RawDocument struct {
	Bytes      []byte
	Filename   string
	Role       DocumentRole
	FormatHint string // extension or MIME type, optional
}

// LineItem is a detected (category, value) pair from a tabular source.
type LineItem struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	RawValue string  `json:"raw_value"`
}

// PreprocessedContent is the format-normalized intermediate representation.
type PreprocessedContent struct {
	// Text is the canonical prompt-ready string with structural markers.
	Text string `json:"text"`
	// LineItems holds (category, value) pairs when the source was tabular
	// and a value column could be classified.
	LineItems []LineItem `json:"line_items,omitempty"`
	// IsFinancialStatement distinguishes the paired category/value layout
	// from a generic table.
	IsFinancialStatement bool           `json:"is_financial_statement"`
	Format               DocumentFormat `json:"format"`
	Pages                int            `json:"pages,omitempty"`
	Sheets               int            `json:"sheets,omitempty"`
}

// Empty reports whether preprocessing produced no usable content.
func (p *PreprocessedContent) Empty() bool {
	return p == nil || (p.Text == "" && len(p.LineItems) == 0)
}

// FinancialRecord is the fixed, additive-only output schema. A field is
// considered null when its provenance is ProvenanceMissing; the zero value is
// kept in place so downstream arithmetic never dereferences pointers.
type FinancialRecord struct {
	GrossPotentialRent    float64 `json:"gross_potential_rent"`
	VacancyLoss           float64 `json:"vacancy_loss"`
	Concessions           float64 `json:"concessions"`
	BadDebt               float64 `json:"bad_debt"`
	OtherIncome           float64 `json:"other_income"`
	EffectiveGrossIncome  float64 `json:"effective_gross_income"`
	OperatingExpenses     float64 `json:"operating_expenses"`
	PropertyTaxes         float64 `json:"property_taxes"`
	Insurance             float64 `json:"insurance"`
	RepairsMaintenance    float64 `json:"repairs_maintenance"`
	Utilities             float64 `json:"utilities"`
	ManagementFees        float64 `json:"management_fees"`
	ParkingIncome         float64 `json:"parking_income"`
	LaundryIncome         float64 `json:"laundry_income"`
	LateFees              float64 `json:"late_fees"`
	PetFees               float64 `json:"pet_fees"`
	ApplicationFees       float64 `json:"application_fees"`
	StorageFees           float64 `json:"storage_fees"`
	AmenityFees           float64 `json:"amenity_fees"`
	UtilityReimbursements float64 `json:"utility_reimbursements"`
	CleaningFees          float64 `json:"cleaning_fees"`
	CancellationFees      float64 `json:"cancellation_fees"`
	MiscellaneousIncome   float64 `json:"miscellaneous_income"`
	NetOperatingIncome    float64 `json:"net_operating_income"`
}

func (r *FinancialRecord) fieldPtr(name string) *float64 {
	switch name {
	case FieldGrossPotentialRent:
		return &r.GrossPotentialRent
	case FieldVacancyLoss:
		return &r.VacancyLoss
	case FieldConcessions:
		return &r.Concessions
	case FieldBadDebt:
		return &r.BadDebt
	case FieldOtherIncome:
		return &r.OtherIncome
	case FieldEffectiveGrossIncome:
		return &r.EffectiveGrossIncome
	case FieldOperatingExpenses:
		return &r.OperatingExpenses
	case FieldPropertyTaxes:
		return &r.PropertyTaxes
	case FieldInsurance:
		return &r.Insurance
	case FieldRepairsMaintenance:
		return &r.RepairsMaintenance
	case FieldUtilities:
		return &r.Utilities
	case FieldManagementFees:
		return &r.ManagementFees
	case FieldParkingIncome:
		return &r.ParkingIncome
	case FieldLaundryIncome:
		return &r.LaundryIncome
	case FieldLateFees:
		return &r.LateFees
	case FieldPetFees:
		return &r.PetFees
	case FieldApplicationFees:
		return &r.ApplicationFees
	case FieldStorageFees:
		return &r.StorageFees
	case FieldAmenityFees:
		return &r.AmenityFees
	case FieldUtilityReimbursements:
		return &r.UtilityReimbursements
	case FieldCleaningFees:
		return &r.CleaningFees
	case FieldCancellationFees:
		return &r.CancellationFees
	case FieldMiscellaneousIncome:
		return &r.MiscellaneousIncome
	case FieldNetOperatingIncome:
		return &r.NetOperatingIncome
	default:
		return nil
	}
}

// Value returns the named field. The second return is false for unknown names.
func (r *FinancialRecord) Value(name string) (float64, bool) {
	p := r.fieldPtr(name)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// SetValue assigns the named field and reports whether the name was known.
func (r *FinancialRecord) SetValue(name string, v float64) bool {
	p := r.fieldPtr(name)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// ProvenanceMap tracks how each field value was obtained. Fields absent from
// the map are treated as ProvenanceMissing.
type ProvenanceMap map[string]Provenance

// Get returns the provenance for a field, defaulting to ProvenanceMissing.
func (m ProvenanceMap) Get(field string) Provenance {
	if p, ok := m[field]; ok {
		return p
	}
	return ProvenanceMissing
}

// FieldConfidence maps field name to a score in [0,1].
type FieldConfidence map[string]float64

// ExtractionAttempt records one engine attempt for the audit trail.
type ExtractionAttempt struct {
	N            int    `json:"n"`
	Strategy     string `json:"strategy"`
	RawResponse  string `json:"raw_response,omitempty"`
	ParseOutcome string `json:"parse_outcome"`
}

// AuditEntry is a single step in a document's append-only audit trail.
type AuditEntry struct {
	At     time.Time `json:"at"`
	Step   string    `json:"step"`
	Detail string    `json:"detail"`
}

// ExtractionResult is the complete output of a pipeline invocation.
type ExtractionResult struct {
	Status          ResultStatus        `json:"status"`
	Diagnostic      string              `json:"diagnostic,omitempty"`
	Role            DocumentRole        `json:"role"`
	Record          *FinancialRecord    `json:"record,omitempty"`
	Provenance      ProvenanceMap       `json:"provenance,omitempty"`
	FieldConfidence FieldConfidence     `json:"field_confidence,omitempty"`
	Confidence      ConfidenceLevel     `json:"overall_confidence"`
	Method          ExtractionMethod    `json:"extraction_method"`
	Attempts        []ExtractionAttempt `json:"attempts,omitempty"`
	AuditTrail      []AuditEntry        `json:"audit_trail"`
	ProcessingTime  time.Duration       `json:"processing_time_ns"`
}
