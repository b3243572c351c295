package preprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noiflow/internal/domain"
)

func TestPreprocess_CSVStatement(t *testing.T) {
	csvData := []byte(`Account,Amount
Gross Potential Rent,"30,000"
Vacancy Loss,"(1,500)"
Operating Expenses,"12,000"
`)
	doc := domain.RawDocument{Bytes: csvData, Filename: "statement.csv", Role: domain.RoleCurrent}

	content, err := NewPreprocessor().Preprocess(doc)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatCSV, content.Format)
	assert.True(t, content.IsFinancialStatement)
	assert.Contains(t, content.Text, "[FINANCIAL_STATEMENT_FORMAT]")

	require.Len(t, content.LineItems, 3)
	assert.Equal(t, "Gross Potential Rent", content.LineItems[0].Category)
	assert.InDelta(t, 30000, content.LineItems[0].Value, 1e-9)
	assert.InDelta(t, -1500, content.LineItems[1].Value, 1e-9)
}

func TestPreprocess_SemicolonDelimiter(t *testing.T) {
	csvData := []byte("Account;Amount\nRental Income;30000\nInsurance;800\n")
	doc := domain.RawDocument{Bytes: csvData, Filename: "export.csv"}

	content, err := NewPreprocessor().Preprocess(doc)
	require.NoError(t, err)
	require.Len(t, content.LineItems, 2)
	assert.InDelta(t, 800, content.LineItems[1].Value, 1e-9)
}

func TestPreprocess_PlainTextSections(t *testing.T) {
	text := []byte(`INCOME
Gross Potential Rent   50,000
Vacancy   (2,500)

EXPENSES
Insurance   800
`)
	doc := domain.RawDocument{Bytes: text, Filename: "statement.txt"}

	content, err := NewPreprocessor().Preprocess(doc)
	require.NoError(t, err)

	assert.Equal(t, domain.FormatText, content.Format)
	assert.Contains(t, content.Text, "[SECTION: INCOME]")
	assert.Contains(t, content.Text, "[SECTION: EXPENSES]")
	assert.True(t, content.IsFinancialStatement)
	require.Len(t, content.LineItems, 3)
	assert.InDelta(t, -2500, content.LineItems[1].Value, 1e-9)
}

func TestPreprocess_UnknownBinaryRejected(t *testing.T) {
	doc := domain.RawDocument{Bytes: []byte{0x00, 0xFF, 0xFE, 0x01, 0x02}, Filename: "blob.bin"}

	content, err := NewPreprocessor().Preprocess(doc)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	require.NotNil(t, content)
	assert.True(t, content.Empty())
	assert.Equal(t, domain.FormatUnknown, content.Format)
}

func TestPreprocess_EmptyDocumentRejected(t *testing.T) {
	_, err := NewPreprocessor().Preprocess(domain.RawDocument{Filename: "empty.xyz"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestResolveFormat_MagicBytesBeatHint(t *testing.T) {
	p := NewPreprocessor()
	doc := domain.RawDocument{
		Bytes:      append([]byte("%PDF-1.7"), 0x0A),
		Filename:   "mislabeled.txt",
		FormatHint: "text/plain",
	}
	assert.Equal(t, domain.FormatPDF, p.resolveFormat(doc))
}

func TestResolveFormat_HintAndExtension(t *testing.T) {
	p := NewPreprocessor()

	byHint := domain.RawDocument{Bytes: []byte("a,b\n1,2\n"), FormatHint: "text/csv"}
	assert.Equal(t, domain.FormatCSV, p.resolveFormat(byHint))

	byExt := domain.RawDocument{Bytes: []byte("hello world"), Filename: "notes.txt"}
	assert.Equal(t, domain.FormatText, p.resolveFormat(byExt))
}
