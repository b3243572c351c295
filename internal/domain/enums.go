package domain

import "strings"

// DocumentRole identifies which reporting period a document covers.
type DocumentRole string

const (
	RoleCurrent   DocumentRole = "current"
	RolePrior     DocumentRole = "prior"
	RoleBudget    DocumentRole = "budget"
	RolePriorYear DocumentRole = "prior_year"
	RoleUnknown   DocumentRole = "unknown"
)

// ParseRole normalizes a role string supplied by the caller. Looser hints such
// as "actual" or "prior year" map onto the four canonical roles.
func ParseRole(s string) DocumentRole {
	switch v := strings.ToLower(strings.TrimSpace(s)); {
	case v == "current" || v == "actual" || v == "current_month":
		return RoleCurrent
	case v == "prior" || v == "prior_month":
		return RolePrior
	case v == "budget":
		return RoleBudget
	case v == "prior_year" || v == "prior-year" || v == "prioryear":
		return RolePriorYear
	case strings.Contains(v, "budget"):
		return RoleBudget
	case strings.Contains(v, "prior") && strings.Contains(v, "year"):
		return RolePriorYear
	case strings.Contains(v, "prior"):
		return RolePrior
	case strings.Contains(v, "actual") || strings.Contains(v, "current"):
		return RoleCurrent
	default:
		return RoleUnknown
	}
}

// DocumentFormat is the resolved source format of an uploaded document.
type DocumentFormat string

const (
	FormatXLSX    DocumentFormat = "xlsx"
	FormatXLS     DocumentFormat = "xls"
	FormatCSV     DocumentFormat = "csv"
	FormatPDF     DocumentFormat = "pdf"
	FormatText    DocumentFormat = "txt"
	FormatUnknown DocumentFormat = "unknown"
)

// AllowedExtensions maps file extensions (without dot) to DocumentFormat.
var AllowedExtensions = map[string]DocumentFormat{
	"xlsx": FormatXLSX,
	"xlsm": FormatXLSX,
	"xls":  FormatXLS,
	"csv":  FormatCSV,
	"tsv":  FormatCSV,
	"pdf":  FormatPDF,
	"txt":  FormatText,
}

// AllowedContentTypes maps MIME content types to DocumentFormat.
var AllowedContentTypes = map[string]DocumentFormat{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
	"application/vnd.ms-excel":  FormatXLS,
	"text/csv":                  FormatCSV,
	"text/tab-separated-values": FormatCSV,
	"application/pdf":           FormatPDF,
	"text/plain":                FormatText,
}

// ResultStatus classifies the terminal outcome of a pipeline invocation.
// Format and content rejections are statuses, not raised errors, so callers
// can always tell "no data in the document" apart from "extraction was
// attempted and came back uncertain".
type ResultStatus string

const (
	StatusOK                 ResultStatus = "ok"
	StatusUnsupportedFormat  ResultStatus = "unsupported_format"
	StatusNoFinancialContent ResultStatus = "no_financial_content"
)

// ConfidenceLevel is the qualitative reliability bucket for a record.
type ConfidenceLevel string

const (
	ConfidenceHigh      ConfidenceLevel = "HIGH"
	ConfidenceMedium    ConfidenceLevel = "MEDIUM"
	ConfidenceLow       ConfidenceLevel = "LOW"
	ConfidenceUncertain ConfidenceLevel = "UNCERTAIN"
)

// Provenance records how a field value was obtained.
type Provenance string

const (
	ProvenanceModel      Provenance = "model"
	ProvenancePattern    Provenance = "pattern"
	ProvenanceCalculated Provenance = "calculated"
	ProvenanceMissing    Provenance = "missing"
)

// ExtractionMethod names the path that produced the final record.
type ExtractionMethod string

const (
	MethodModel   ExtractionMethod = "model"
	MethodPattern ExtractionMethod = "pattern_fallback"
	MethodNone    ExtractionMethod = "none"
)
