package domain

// Canonical field names of the FinancialRecord schema. These are the JSON
// names consumed downstream; the schema is additive-only, so existing names
// and semantics must never change.
const (
	FieldGrossPotentialRent    = "gross_potential_rent"
	FieldVacancyLoss           = "vacancy_loss"
	FieldConcessions           = "concessions"
	FieldBadDebt               = "bad_debt"
	FieldOtherIncome           = "other_income"
	FieldEffectiveGrossIncome  = "effective_gross_income"
	FieldOperatingExpenses     = "operating_expenses"
	FieldPropertyTaxes         = "property_taxes"
	FieldInsurance             = "insurance"
	FieldRepairsMaintenance    = "repairs_maintenance"
	FieldUtilities             = "utilities"
	FieldManagementFees        = "management_fees"
	FieldParkingIncome         = "parking_income"
	FieldLaundryIncome         = "laundry_income"
	FieldLateFees              = "late_fees"
	FieldPetFees               = "pet_fees"
	FieldApplicationFees       = "application_fees"
	FieldStorageFees           = "storage_fees"
	FieldAmenityFees           = "amenity_fees"
	FieldUtilityReimbursements = "utility_reimbursements"
	FieldCleaningFees          = "cleaning_fees"
	FieldCancellationFees      = "cancellation_fees"
	FieldMiscellaneousIncome   = "miscellaneous_income"
	FieldNetOperatingIncome    = "net_operating_income"
)

// AllFields lists every field of the record in schema order.
var AllFields = []string{
	FieldGrossPotentialRent,
	FieldVacancyLoss,
	FieldConcessions,
	FieldBadDebt,
	FieldOtherIncome,
	FieldEffectiveGrossIncome,
	FieldOperatingExpenses,
	FieldPropertyTaxes,
	FieldInsurance,
	FieldRepairsMaintenance,
	FieldUtilities,
	FieldManagementFees,
	FieldParkingIncome,
	FieldLaundryIncome,
	FieldLateFees,
	FieldPetFees,
	FieldApplicationFees,
	FieldStorageFees,
	FieldAmenityFees,
	FieldUtilityReimbursements,
	FieldCleaningFees,
	FieldCancellationFees,
	FieldMiscellaneousIncome,
	FieldNetOperatingIncome,
}

// PrimaryMetrics are the fields whose weakest confidence drives the overall
// level: one broken primary invalidates the record for downstream decisions.
var PrimaryMetrics = []string{
	FieldGrossPotentialRent,
	FieldEffectiveGrossIncome,
	FieldOperatingExpenses,
	FieldNetOperatingIncome,
}

// OpExComponents are the itemized expense fields expected to sum to
// operating_expenses.
var OpExComponents = []string{
	FieldPropertyTaxes,
	FieldInsurance,
	FieldRepairsMaintenance,
	FieldUtilities,
	FieldManagementFees,
}

// OtherIncomeComponents are the itemized income fields expected to sum to
// other_income.
var OtherIncomeComponents = []string{
	FieldParkingIncome,
	FieldLaundryIncome,
	FieldLateFees,
	FieldPetFees,
	FieldApplicationFees,
	FieldStorageFees,
	FieldAmenityFees,
	FieldUtilityReimbursements,
	FieldCleaningFees,
	FieldCancellationFees,
	FieldMiscellaneousIncome,
}
