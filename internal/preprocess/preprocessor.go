// Package preprocess normalizes heterogeneous financial documents (xlsx, xls,
// csv, pdf, plain text) into a single prompt-ready representation with
// structural markers plus detected (category, value) line items.
package preprocess

import (
	"bytes"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"noiflow/internal/domain"
)

// Preprocessor resolves a document's format and routes it to the matching
// reader. It is stateless and safe for concurrent use.
type Preprocessor struct{}

// NewPreprocessor creates a Preprocessor.
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{}
}

// Preprocess converts raw document bytes into normalized content. An
// unsupported or unreadable document returns an empty-but-valid content value
// together with domain.ErrUnsupportedFormat so callers can surface a status
// instead of a crash.
func (p *Preprocessor) Preprocess(doc domain.RawDocument) (*domain.PreprocessedContent, error) {
	format := p.resolveFormat(doc)
	if format == domain.FormatUnknown {
		log.Printf("preprocess.Preprocessor: unresolved format for %q", doc.Filename)
		return &domain.PreprocessedContent{Format: domain.FormatUnknown}, domain.ErrUnsupportedFormat
	}

	content, err := p.read(format, doc.Bytes)
	if err != nil {
		log.Printf("preprocess.Preprocessor: reading %q as %s failed: %v", doc.Filename, format, err)
		return &domain.PreprocessedContent{Format: format}, fmt.Errorf("%w: %v", domain.ErrUnsupportedFormat, err)
	}

	log.Printf("preprocess.Preprocessor: %q resolved as %s (sheets=%d pages=%d items=%d statement=%t)",
		doc.Filename, format, content.Sheets, content.Pages, len(content.LineItems), content.IsFinancialStatement)
	return content, nil
}

func (p *Preprocessor) read(format domain.DocumentFormat, data []byte) (*domain.PreprocessedContent, error) {
	switch format {
	case domain.FormatXLSX:
		return processXLSX(data)
	case domain.FormatXLS:
		return processXLS(data)
	case domain.FormatCSV:
		return processCSV(data)
	case domain.FormatPDF:
		return processPDF(data)
	case domain.FormatText:
		return processText(data)
	default:
		return nil, domain.ErrUnsupportedFormat
	}
}

// resolveFormat picks a format from, in order, the caller's hint, the file
// extension, and the content's magic bytes. Magic bytes win over a text hint
// when they identify a binary container, since mislabeled uploads are routine.
func (p *Preprocessor) resolveFormat(doc domain.RawDocument) domain.DocumentFormat {
	sniffed := sniffFormat(doc.Bytes)
	if sniffed == domain.FormatXLSX || sniffed == domain.FormatXLS || sniffed == domain.FormatPDF {
		return sniffed
	}

	hint := strings.ToLower(strings.TrimSpace(doc.FormatHint))
	if f, ok := domain.AllowedContentTypes[hint]; ok {
		return f
	}
	if f, ok := domain.AllowedExtensions[strings.TrimPrefix(hint, ".")]; ok {
		return f
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(doc.Filename)), ".")
	if f, ok := domain.AllowedExtensions[ext]; ok {
		return f
	}
	return sniffed
}

var (
	magicPDF = []byte("%PDF-")
	magicZIP = []byte{0x50, 0x4B, 0x03, 0x04}
	magicOLE = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

func sniffFormat(data []byte) domain.DocumentFormat {
	switch {
	case len(data) == 0:
		return domain.FormatUnknown
	case bytes.HasPrefix(data, magicPDF):
		return domain.FormatPDF
	case bytes.HasPrefix(data, magicZIP):
		// Office Open XML containers are zip archives.
		return domain.FormatXLSX
	case bytes.HasPrefix(data, magicOLE):
		return domain.FormatXLS
	}
	if !utf8.Valid(data) {
		return domain.FormatUnknown
	}
	head := string(data)
	if i := strings.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if strings.Count(head, ",") >= 2 || strings.Count(head, ";") >= 2 || strings.Count(head, "\t") >= 2 {
		return domain.FormatCSV
	}
	return domain.FormatText
}
